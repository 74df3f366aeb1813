package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/model"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
	"github.com/doctran/doctran/internal/repo"
)

// UnitService covers the manual unit path, where callers supply the
// sentences themselves instead of running the extraction pipeline.
type UnitService struct {
	docs         *repo.DocumentRepo
	units        *repo.UnitRepo
	translations *repo.TranslationRepo
}

func NewUnitService(docs *repo.DocumentRepo, units *repo.UnitRepo, translations *repo.TranslationRepo) *UnitService {
	return &UnitService{docs: docs, units: units, translations: translations}
}

// CreateUnits stores caller-provided units with status CREATED and
// order indices following the input order. Existing units are only
// replaced when overwrite is set; replacement drops translations first
// because they reference the units.
func (s *UnitService) CreateUnits(ctx context.Context, docID string, texts []string, overwrite bool) ([]model.DocUnit, error) {
	if strings.TrimSpace(docID) == "" {
		return nil, fmt.Errorf("%w: document id is empty", appErr.ErrInvalid)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: no unit texts", appErr.ErrInvalid)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: unit text %d is blank", appErr.ErrInvalid, i)
		}
	}

	exists, err := s.docs.ExistsByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, appErr.ErrNotFound
	}

	hasUnits, err := s.units.ExistsByDocumentID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if hasUnits {
		if !overwrite {
			return nil, fmt.Errorf("%w: units already exist for document %s", appErr.ErrConflict, docID)
		}
		if err := s.translations.DeleteByDocumentID(ctx, docID); err != nil {
			return nil, fmt.Errorf("delete existing translations: %w", err)
		}
		if err := s.units.DeleteByDocumentID(ctx, docID); err != nil {
			return nil, fmt.Errorf("delete existing units: %w", err)
		}
	}

	now := time.Now().Unix()
	units := make([]*model.DocUnit, 0, len(texts))
	for i, text := range texts {
		units = append(units, &model.DocUnit{
			ID:         newID(),
			DocumentID: docID,
			UnitType:   model.UnitTypeSentence,
			OrderInDoc: i,
			SourceText: text,
			Status:     model.UnitStatusCreated,
			Ctime:      now,
		})
	}
	if err := s.units.BulkInsert(ctx, units); err != nil {
		return nil, fmt.Errorf("save units: %w", err)
	}
	logutil.GetLogger(ctx).Info("units created",
		zap.String("document_id", docID), zap.Int("count", len(units)), zap.Bool("overwrite", overwrite))

	out := make([]model.DocUnit, 0, len(units))
	for _, unit := range units {
		out = append(out, *unit)
	}
	return out, nil
}

// ListUnits returns a document's units ordered by position.
func (s *UnitService) ListUnits(ctx context.Context, docID string) ([]model.DocUnit, error) {
	units, err := s.units.ListByDocumentID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, appErr.ErrNotFound
	}
	return units, nil
}
