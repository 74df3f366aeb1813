package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/doctran/doctran/internal/pkg/errcode"
	"github.com/doctran/doctran/internal/pkg/response"
	"github.com/doctran/doctran/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload accepts a multipart PDF upload. Source and target languages
// are optional form fields; blank values fall back to the server
// defaults when the pipeline runs.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	opened, err := file.Open()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to open file")
		return
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "failed to read file")
		return
	}

	doc, err := h.documents.Upload(c.Request.Context(), &service.UploadRequest{
		OwnerID:     getOwnerID(c),
		Filename:    file.Filename,
		Data:        data,
		LanguageSrc: strings.TrimSpace(c.PostForm("language_src")),
		LanguageTgt: strings.TrimSpace(c.PostForm("language_tgt")),
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), getOwnerID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}
