package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/doctran/doctran/internal/model"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

var documentColumns = []string{"id", "owner_id", "title", "file_key", "language_src", "language_tgt", "total_pages", "ctime", "mtime"}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.Document) error {
	data := map[string]interface{}{
		"id":           doc.ID,
		"owner_id":     doc.OwnerID,
		"title":        doc.Title,
		"file_key":     doc.FileKey,
		"language_src": doc.LanguageSrc,
		"language_tgt": doc.LanguageTgt,
		"total_pages":  doc.TotalPages,
		"ctime":        doc.Ctime,
		"mtime":        doc.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *DocumentRepo) GetByID(ctx context.Context, docID string) (*model.Document, error) {
	where := map[string]interface{}{
		"id": docID,
	}
	sqlStr, args, err := builder.BuildSelect("documents", where, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var doc model.Document
	if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.FileKey, &doc.LanguageSrc, &doc.LanguageTgt, &doc.TotalPages, &doc.Ctime, &doc.Mtime); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) ExistsByID(ctx context.Context, docID string) (bool, error) {
	sqlStr, args := finalize("SELECT COUNT(1) FROM documents WHERE id = ?", []interface{}{docID})
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// TranslationHistoryItem is one document that has at least one completed
// translation, with the timestamp of its most recent one.
type TranslationHistoryItem struct {
	DocumentID       string `json:"document_id"`
	Title            string `json:"title"`
	LanguageSrc      string `json:"language_src"`
	LanguageTgt      string `json:"language_tgt"`
	TotalPages       int    `json:"total_pages"`
	LastTranslatedAt int64  `json:"last_translated_at"`
}

func (r *DocumentRepo) TranslationHistory(ctx context.Context, ownerID string) ([]TranslationHistoryItem, error) {
	query := `SELECT d.id, d.title, d.language_src, d.language_tgt, d.total_pages, MAX(t.ctime)
FROM documents d
JOIN doc_units u ON u.document_id = d.id
JOIN unit_translations t ON t.unit_id = u.id
WHERE d.owner_id = ?
GROUP BY d.id, d.title, d.language_src, d.language_tgt, d.total_pages
ORDER BY MAX(t.ctime) DESC`
	sqlStr, args := finalize(query, []interface{}{ownerID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]TranslationHistoryItem, 0)
	for rows.Next() {
		var item TranslationHistoryItem
		if err := rows.Scan(&item.DocumentID, &item.Title, &item.LanguageSrc, &item.LanguageTgt, &item.TotalPages, &item.LastTranslatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
