// Package extract turns stored PDF files back into plain text.
package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/filestore"
)

// TextExtractor loads a document's original PDF from the file store and
// extracts the text of every page, joined with newlines.
type TextExtractor struct {
	store filestore.Store
}

func NewTextExtractor(store filestore.Store) *TextExtractor {
	return &TextExtractor{store: store}
}

// PageCount reports how many pages a raw PDF has without extracting
// its text.
func PageCount(data []byte) (int, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

func (e *TextExtractor) ExtractText(ctx context.Context, fileKey string) (string, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("file_key", fileKey))
	if strings.TrimSpace(fileKey) == "" {
		return "", fmt.Errorf("file key is empty")
	}
	r, err := e.store.Open(ctx, fileKey)
	if err != nil {
		return "", fmt.Errorf("download pdf: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf stream: %w", err)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	pages := doc.NumPage()
	for i := 0; i < pages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i+1, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	logger.Info("pdf text extracted", zap.Int("pages", pages), zap.Int("length", sb.Len()))
	return sb.String(), nil
}
