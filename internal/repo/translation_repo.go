package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/doctran/doctran/internal/model"
)

type TranslationRepo struct {
	db *sql.DB
}

func NewTranslationRepo(db *sql.DB) *TranslationRepo {
	return &TranslationRepo{db: db}
}

func (r *TranslationRepo) BulkInsert(ctx context.Context, translations []*model.UnitTranslation) error {
	if len(translations) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(translations))
	for _, tr := range translations {
		data = append(data, map[string]interface{}{
			"id":              tr.ID,
			"unit_id":         tr.UnitID,
			"target_lang":     tr.TargetLang,
			"translated_text": tr.TranslatedText,
			"ctime":           tr.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("unit_translations", data)
	if err != nil {
		return err
	}
	sqlStr, args = finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListByDocumentID returns every translation whose unit belongs to the
// document, keyed lookup left to the caller.
func (r *TranslationRepo) ListByDocumentID(ctx context.Context, documentID string) ([]model.UnitTranslation, error) {
	query := `SELECT t.id, t.unit_id, t.target_lang, t.translated_text, t.ctime
FROM unit_translations t
JOIN doc_units u ON u.id = t.unit_id
WHERE u.document_id = ?`
	sqlStr, args := finalize(query, []interface{}{documentID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	translations := make([]model.UnitTranslation, 0)
	for rows.Next() {
		var tr model.UnitTranslation
		if err := rows.Scan(&tr.ID, &tr.UnitID, &tr.TargetLang, &tr.TranslatedText, &tr.Ctime); err != nil {
			return nil, err
		}
		translations = append(translations, tr)
	}
	return translations, rows.Err()
}

// DeleteByDocumentID removes translations before their owning units are
// deleted; the foreign key on unit_id requires this order.
func (r *TranslationRepo) DeleteByDocumentID(ctx context.Context, documentID string) error {
	query := `DELETE FROM unit_translations WHERE unit_id IN (SELECT id FROM doc_units WHERE document_id = ?)`
	sqlStr, args := finalize(query, []interface{}{documentID})
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}
