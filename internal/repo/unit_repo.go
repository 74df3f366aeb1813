package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/doctran/doctran/internal/model"
	"github.com/doctran/doctran/internal/pkg/dbutil"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
)

type UnitRepo struct {
	db *sql.DB
}

func NewUnitRepo(db *sql.DB) *UnitRepo {
	return &UnitRepo{db: db}
}

var unitColumns = []string{"id", "document_id", "unit_type", "order_in_doc", "source_text", "status", "ctime"}

// BulkInsert writes units in slice order. Callers are responsible for
// assigning contiguous order_in_doc values; the unique index on
// (document_id, order_in_doc) rejects duplicates.
func (r *UnitRepo) BulkInsert(ctx context.Context, units []*model.DocUnit) error {
	if len(units) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(units))
	for _, unit := range units {
		data = append(data, map[string]interface{}{
			"id":           unit.ID,
			"document_id":  unit.DocumentID,
			"unit_type":    unit.UnitType,
			"order_in_doc": unit.OrderInDoc,
			"source_text":  unit.SourceText,
			"status":       unit.Status,
			"ctime":        unit.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("doc_units", data)
	if err != nil {
		return err
	}
	sqlStr, args = finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return fmt.Errorf("%w: duplicate unit position", appErr.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UnitRepo) ExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	sqlStr, args := finalize("SELECT COUNT(1) FROM doc_units WHERE document_id = ?", []interface{}{documentID})
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UnitRepo) ListByDocumentID(ctx context.Context, documentID string) ([]model.DocUnit, error) {
	where := map[string]interface{}{
		"document_id": documentID,
		"_orderby":    "order_in_doc asc",
	}
	sqlStr, args, err := builder.BuildSelect("doc_units", where, unitColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	units := make([]model.DocUnit, 0)
	for rows.Next() {
		var unit model.DocUnit
		if err := rows.Scan(&unit.ID, &unit.DocumentID, &unit.UnitType, &unit.OrderInDoc, &unit.SourceText, &unit.Status, &unit.Ctime); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *UnitRepo) UpdateStatusByIDs(ctx context.Context, unitIDs []string, status string) error {
	if len(unitIDs) == 0 {
		return nil
	}
	ids := make([]interface{}, 0, len(unitIDs))
	for _, id := range unitIDs {
		ids = append(ids, id)
	}
	where := map[string]interface{}{
		"id in": ids,
	}
	update := map[string]interface{}{
		"status": status,
	}
	sqlStr, args, err := builder.BuildUpdate("doc_units", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// MarkStale flips TRANSLATING units older than the cutoff to FAILED and
// returns how many rows changed. Documents listed in excludeDocIDs are
// left alone, so a run that legitimately outlives the cutoff is not
// clobbered.
func (r *UnitRepo) MarkStale(ctx context.Context, cutoff int64, excludeDocIDs []string) (int64, error) {
	query := "UPDATE doc_units SET status = ? WHERE status = ? AND ctime < ?"
	params := []interface{}{model.UnitStatusFailed, model.UnitStatusTranslating, cutoff}
	if len(excludeDocIDs) > 0 {
		query += " AND document_id NOT IN (?" + strings.Repeat(", ?", len(excludeDocIDs)-1) + ")"
		for _, id := range excludeDocIDs {
			params = append(params, id)
		}
	}
	sqlStr, args := finalize(query, params)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *UnitRepo) DeleteByDocumentID(ctx context.Context, documentID string) error {
	sqlStr, args := finalize("DELETE FROM doc_units WHERE document_id = ?", []interface{}{documentID})
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// StatusCounts holds a per-status breakdown taken from a single query,
// so the numbers are a consistent snapshot.
type StatusCounts struct {
	Total       int64 `json:"total"`
	Translated  int64 `json:"translated"`
	Translating int64 `json:"translating"`
	Created     int64 `json:"created"`
	Failed      int64 `json:"failed"`
}

func (r *UnitRepo) CountByStatus(ctx context.Context, documentID string) (*StatusCounts, error) {
	sqlStr, args := finalize(
		"SELECT status, COUNT(1) FROM doc_units WHERE document_id = ? GROUP BY status",
		[]interface{}{documentID},
	)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := &StatusCounts{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts.Total += count
		switch status {
		case model.UnitStatusTranslated:
			counts.Translated = count
		case model.UnitStatusTranslating:
			counts.Translating = count
		case model.UnitStatusCreated:
			counts.Created = count
		case model.UnitStatusFailed:
			counts.Failed = count
		}
	}
	return counts, rows.Err()
}
