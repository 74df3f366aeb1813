// Package pipeline drives the document translation run: extract,
// segment, pre-save units, translate in bounded chunks, and record
// per-unit status. Failures are isolated per chunk; a chunk that fails
// never aborts the chunks after it.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/model"
	"github.com/doctran/doctran/internal/notify"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
	"github.com/doctran/doctran/internal/repo"
	"github.com/doctran/doctran/internal/segment"
	"github.com/doctran/doctran/internal/translator"
)

type DocumentStore interface {
	GetByID(ctx context.Context, docID string) (*model.Document, error)
	TranslationHistory(ctx context.Context, ownerID string) ([]repo.TranslationHistoryItem, error)
}

type UnitStore interface {
	BulkInsert(ctx context.Context, units []*model.DocUnit) error
	ExistsByDocumentID(ctx context.Context, documentID string) (bool, error)
	ListByDocumentID(ctx context.Context, documentID string) ([]model.DocUnit, error)
	UpdateStatusByIDs(ctx context.Context, unitIDs []string, status string) error
	DeleteByDocumentID(ctx context.Context, documentID string) error
	CountByStatus(ctx context.Context, documentID string) (*repo.StatusCounts, error)
}

type TranslationStore interface {
	BulkInsert(ctx context.Context, translations []*model.UnitTranslation) error
	ListByDocumentID(ctx context.Context, documentID string) ([]model.UnitTranslation, error)
	DeleteByDocumentID(ctx context.Context, documentID string) error
}

type TextExtractor interface {
	ExtractText(ctx context.Context, fileKey string) (string, error)
}

type Options struct {
	ChunkSize  int
	SourceLang string
	TargetLang string
	Timeout    time.Duration
}

type Service struct {
	docs         DocumentStore
	units        UnitStore
	translations TranslationStore
	extractor    TextExtractor
	trans        translator.Translator
	hub          *notify.Hub
	pool         *Pool
	opts         Options

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

func NewService(docs DocumentStore, units UnitStore, translations TranslationStore, extractor TextExtractor, trans translator.Translator, hub *notify.Hub, pool *Pool, opts Options) *Service {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 30
	}
	if opts.SourceLang == "" {
		opts.SourceLang = "en"
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "ko"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	return &Service{
		docs:         docs,
		units:        units,
		translations: translations,
		extractor:    extractor,
		trans:        trans,
		hub:          hub,
		pool:         pool,
		opts:         opts,
		inflight:     make(map[string]struct{}),
	}
}

// Enqueue hands the run to the worker pool and returns immediately.
// A document already in flight is rejected before it reaches the
// queue; a saturated queue is reported as unavailable.
func (s *Service) Enqueue(documentID string, overwrite bool) error {
	if strings.TrimSpace(documentID) == "" {
		return appErr.ErrInvalid
	}
	if !s.acquire(documentID) {
		return fmt.Errorf("%w: document %s already processing", appErr.ErrConflict, documentID)
	}
	err := s.pool.Submit(func(ctx context.Context) {
		defer s.release(documentID)
		s.run(ctx, documentID, overwrite)
	})
	if err != nil {
		s.release(documentID)
		return fmt.Errorf("%w: %v", appErr.ErrUnavailable, err)
	}
	return nil
}

// Process runs the pipeline synchronously with the same single-flight
// guard the asynchronous path uses.
func (s *Service) Process(ctx context.Context, documentID string, overwrite bool) {
	if !s.acquire(documentID) {
		logutil.GetLogger(ctx).Warn("duplicate pipeline trigger ignored", zap.String("document_id", documentID))
		return
	}
	defer s.release(documentID)
	s.run(ctx, documentID, overwrite)
}

func (s *Service) acquire(documentID string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[documentID]; busy {
		return false
	}
	s.inflight[documentID] = struct{}{}
	return true
}

// InFlightIDs lists documents with a run currently executing.
func (s *Service) InFlightIDs() []string {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	ids := make([]string, 0, len(s.inflight))
	for id := range s.inflight {
		ids = append(ids, id)
	}
	return ids
}

func (s *Service) release(documentID string) {
	s.inflightMu.Lock()
	delete(s.inflight, documentID)
	s.inflightMu.Unlock()
}

// run executes one full pipeline pass. It never propagates an error to
// the trigger; outcomes are recorded in unit status and events.
func (s *Service) run(ctx context.Context, documentID string, overwrite bool) {
	logger := logutil.GetLogger(ctx).With(zap.String("document_id", documentID), zap.Bool("overwrite", overwrite))
	logger.Info("pipeline started")
	s.hub.PublishState(documentID, "running", "pipeline started")

	if err := s.process(ctx, documentID, overwrite, logger); err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		s.hub.PublishState(documentID, "failed", err.Error())
		return
	}
	logger.Info("pipeline finished")
}

func (s *Service) process(ctx context.Context, documentID string, overwrite bool, logger *zap.Logger) error {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	rawText, err := s.extractor.ExtractText(ctx, doc.FileKey)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	sentences := segment.Split(rawText)
	if len(sentences) == 0 {
		return fmt.Errorf("%w: no sentences after split", appErr.ErrInvalid)
	}
	logger.Info("sentence split done", zap.Int("count", len(sentences)))

	exists, err := s.units.ExistsByDocumentID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("check existing units: %w", err)
	}
	if exists {
		if !overwrite {
			// Same policy as the manual creation path: existing units
			// are never silently appended to.
			return fmt.Errorf("%w: units already exist for document %s", appErr.ErrConflict, documentID)
		}
		// Translations reference units, so they go first.
		if err := s.translations.DeleteByDocumentID(ctx, documentID); err != nil {
			return fmt.Errorf("delete existing translations: %w", err)
		}
		if err := s.units.DeleteByDocumentID(ctx, documentID); err != nil {
			return fmt.Errorf("delete existing units: %w", err)
		}
		logger.Info("existing units and translations removed")
	}

	now := time.Now().Unix()
	units := make([]*model.DocUnit, 0, len(sentences))
	for i, sentence := range sentences {
		units = append(units, &model.DocUnit{
			ID:         newID(),
			DocumentID: documentID,
			UnitType:   model.UnitTypeSentence,
			OrderInDoc: i,
			SourceText: sentence,
			Status:     model.UnitStatusTranslating,
			Ctime:      now,
		})
	}
	if err := s.units.BulkInsert(ctx, units); err != nil {
		return fmt.Errorf("pre-save units: %w", err)
	}
	logger.Info("units pre-saved", zap.Int("count", len(units)))

	sourceLang := doc.LanguageSrc
	if sourceLang == "" {
		sourceLang = s.opts.SourceLang
	}
	targetLang := doc.LanguageTgt
	if targetLang == "" {
		targetLang = s.opts.TargetLang
	}

	total := len(units)
	translatedCount := 0
	failedCount := 0
	for start := 0; start < total; start += s.opts.ChunkSize {
		end := start + s.opts.ChunkSize
		if end > total {
			end = total
		}
		chunk := units[start:end]
		if err := s.translateChunk(ctx, chunk, sourceLang, targetLang); err != nil {
			logger.Error("chunk translation failed",
				zap.Int("start", start), zap.Int("end", end), zap.Error(err))
			failedCount += len(chunk)
			ids := unitIDs(chunk)
			if markErr := s.units.UpdateStatusByIDs(ctx, ids, model.UnitStatusFailed); markErr != nil {
				logger.Error("failed to mark chunk failed", zap.Error(markErr))
			}
			s.hub.PublishBatchFailed(documentID, start, end, err.Error())
			continue
		}
		translatedCount += len(chunk)
		logger.Info("chunk translated", zap.Int("done", end), zap.Int("total", total))
		s.hub.PublishProgress(documentID, translatedCount, total)
	}

	message := fmt.Sprintf("translated %d/%d units", translatedCount, total)
	if failedCount > 0 {
		message = fmt.Sprintf("translated %d/%d units, %d failed", translatedCount, total, failedCount)
	}
	s.hub.PublishState(documentID, "completed", message)
	return nil
}

// translateChunk calls the provider for one chunk and persists the
// results. Any error leaves the chunk unmarked for the caller to flip
// to FAILED.
func (s *Service) translateChunk(ctx context.Context, chunk []*model.DocUnit, sourceLang, targetLang string) error {
	texts := make([]string, 0, len(chunk))
	for _, unit := range chunk {
		texts = append(texts, unit.SourceText)
	}
	tctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	translated, err := s.trans.Translate(tctx, texts, sourceLang, targetLang)
	cancel()
	if err != nil {
		return err
	}
	if len(translated) != len(texts) {
		return fmt.Errorf("%w: expected=%d actual=%d", translator.ErrSizeMismatch, len(texts), len(translated))
	}

	now := time.Now().Unix()
	rows := make([]*model.UnitTranslation, 0, len(chunk))
	for i, unit := range chunk {
		rows = append(rows, &model.UnitTranslation{
			ID:             newID(),
			UnitID:         unit.ID,
			TargetLang:     targetLang,
			TranslatedText: translated[i],
			Ctime:          now,
		})
	}
	if err := s.translations.BulkInsert(ctx, rows); err != nil {
		return fmt.Errorf("save translations: %w", err)
	}
	if err := s.units.UpdateStatusByIDs(ctx, unitIDs(chunk), model.UnitStatusTranslated); err != nil {
		return fmt.Errorf("mark units translated: %w", err)
	}
	return nil
}

func unitIDs(units []*model.DocUnit) []string {
	ids := make([]string, 0, len(units))
	for _, unit := range units {
		ids = append(ids, unit.ID)
	}
	return ids
}

// TranslationPair is one source sentence with its translation, empty
// when the unit has not been translated yet.
type TranslationPair struct {
	UnitID         string `json:"unit_id"`
	OrderInDoc     int    `json:"order_in_doc"`
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`
}

// TranslationPairs returns every unit of the document in order. A
// document with no units at all is reported as not found.
func (s *Service) TranslationPairs(ctx context.Context, documentID string) ([]TranslationPair, error) {
	units, err := s.units.ListByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, appErr.ErrNotFound
	}
	translations, err := s.translations.ListByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	translatedByUnit := make(map[string]string, len(translations))
	for _, tr := range translations {
		translatedByUnit[tr.UnitID] = tr.TranslatedText
	}
	pairs := make([]TranslationPair, 0, len(units))
	for _, unit := range units {
		pairs = append(pairs, TranslationPair{
			UnitID:         unit.ID,
			OrderInDoc:     unit.OrderInDoc,
			SourceText:     unit.SourceText,
			TranslatedText: translatedByUnit[unit.ID],
		})
	}
	return pairs, nil
}

// Progress reports unit counts by status from a single snapshot query.
func (s *Service) Progress(ctx context.Context, documentID string) (*repo.StatusCounts, error) {
	return s.units.CountByStatus(ctx, documentID)
}

// History lists the owner's documents that have at least one completed
// translation, most recent first.
func (s *Service) History(ctx context.Context, ownerID string) ([]repo.TranslationHistoryItem, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, appErr.ErrInvalid
	}
	return s.docs.TranslationHistory(ctx, ownerID)
}
