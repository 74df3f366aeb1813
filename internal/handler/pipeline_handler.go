package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/doctran/doctran/internal/pipeline"
	"github.com/doctran/doctran/internal/pkg/response"
)

type PipelineHandler struct {
	pipeline *pipeline.Service
}

func NewPipelineHandler(p *pipeline.Service) *PipelineHandler {
	return &PipelineHandler{pipeline: p}
}

// Process triggers a translation run for the document. The run is
// asynchronous; progress is observable on the events endpoint and the
// progress endpoint.
func (h *PipelineHandler) Process(c *gin.Context) {
	docID := c.Param("id")
	overwrite, _ := strconv.ParseBool(c.DefaultQuery("overwrite", "false"))

	if err := h.pipeline.Enqueue(docID, overwrite); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"document_id": docID, "state": "accepted"})
}

func (h *PipelineHandler) TranslationPairs(c *gin.Context) {
	pairs, err := h.pipeline.TranslationPairs(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, pairs)
}

func (h *PipelineHandler) TranslationProgress(c *gin.Context) {
	counts, err := h.pipeline.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, counts)
}

func (h *PipelineHandler) TranslationHistories(c *gin.Context) {
	items, err := h.pipeline.History(c.Request.Context(), getOwnerID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, items)
}
