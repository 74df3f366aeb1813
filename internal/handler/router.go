package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/doctran/doctran/internal/middleware"
)

type RouterDeps struct {
	Documents *DocumentHandler
	Units     *UnitHandler
	Pipeline  *PipelineHandler
	Events    *EventsHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/documents", deps.Documents.Upload)
	authGroup.GET("/documents/:id", deps.Documents.Get)

	authGroup.POST("/documents/:id/units", deps.Units.Create)
	authGroup.GET("/documents/:id/units", deps.Units.List)

	processGroup := authGroup.Group("")
	processGroup.Use(middleware.RateLimit(time.Second))
	processGroup.POST("/documents/:id/process", deps.Pipeline.Process)

	authGroup.GET("/documents/:id/translation-pairs", deps.Pipeline.TranslationPairs)
	authGroup.GET("/documents/:id/translation-progress", deps.Pipeline.TranslationProgress)
	authGroup.GET("/documents/translation-histories", deps.Pipeline.TranslationHistories)

	authGroup.GET("/documents/:id/events", deps.Events.Stream)
}
