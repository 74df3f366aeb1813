package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/extract"
	"github.com/doctran/doctran/internal/filestore"
	"github.com/doctran/doctran/internal/model"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
	"github.com/doctran/doctran/internal/repo"
)

const maxUploadSize = 50 << 20

// DocumentService owns document metadata and the stored PDF blob.
type DocumentService struct {
	docs  *repo.DocumentRepo
	store filestore.Store
}

func NewDocumentService(docs *repo.DocumentRepo, store filestore.Store) *DocumentService {
	return &DocumentService{docs: docs, store: store}
}

type UploadRequest struct {
	OwnerID     string
	Filename    string
	Data        []byte
	LanguageSrc string
	LanguageTgt string
}

// Upload stores the PDF and records the document. The file must carry
// the PDF magic header; anything else is rejected before it touches the
// store.
func (s *DocumentService) Upload(ctx context.Context, req *UploadRequest) (*model.Document, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, appErr.ErrUnauthorized
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", appErr.ErrInvalid)
	}
	if len(req.Data) > maxUploadSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", appErr.ErrInvalid, maxUploadSize)
	}
	if !bytes.HasPrefix(req.Data, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: not a pdf file", appErr.ErrInvalid)
	}

	pages, err := extract.PageCount(req.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable pdf: %v", appErr.ErrInvalid, err)
	}

	docID := newID()
	fileKey := docID + ".pdf"
	if err := s.store.Save(ctx, fileKey, bytes.NewReader(req.Data), int64(len(req.Data))); err != nil {
		return nil, fmt.Errorf("store pdf: %w", err)
	}

	title := strings.TrimSuffix(path.Base(req.Filename), path.Ext(req.Filename))
	if strings.TrimSpace(title) == "" {
		title = docID
	}
	now := time.Now().Unix()
	doc := &model.Document{
		ID:          docID,
		OwnerID:     req.OwnerID,
		Title:       title,
		FileKey:     fileKey,
		LanguageSrc: req.LanguageSrc,
		LanguageTgt: req.LanguageTgt,
		TotalPages:  pages,
		Ctime:       now,
		Mtime:       now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	logutil.GetLogger(ctx).Info("document uploaded",
		zap.String("document_id", docID), zap.String("owner_id", req.OwnerID),
		zap.Int("pages", pages), zap.Int("size", len(req.Data)))
	return doc, nil
}

// Get loads a document and enforces ownership.
func (s *DocumentService) Get(ctx context.Context, ownerID, docID string) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, appErr.ErrForbidden
	}
	return doc, nil
}
