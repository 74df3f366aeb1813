package handler_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/doctran/doctran/internal/config"
	"github.com/doctran/doctran/internal/extract"
	"github.com/doctran/doctran/internal/filestore"
	"github.com/doctran/doctran/internal/handler"
	"github.com/doctran/doctran/internal/middleware"
	"github.com/doctran/doctran/internal/notify"
	"github.com/doctran/doctran/internal/pipeline"
	"github.com/doctran/doctran/internal/pkg/jwt"
	"github.com/doctran/doctran/internal/repo"
	"github.com/doctran/doctran/internal/service"
	"github.com/doctran/doctran/test/testutil"
)

type echoTranslator struct{}

func (echoTranslator) Name() string { return "echo" }

func (echoTranslator) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]string, error) {
	out := make([]string, len(texts))
	copy(out, texts)
	return out, nil
}

var testJWTSecret = []byte("test-secret")

func setupRouter(t *testing.T) (http.Handler, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	docRepo := repo.NewDocumentRepo(db)
	unitRepo := repo.NewUnitRepo(db)
	translationRepo := repo.NewTranslationRepo(db)

	tmpDir, err := os.MkdirTemp("", "doctran-upload-*")
	require.NoError(t, err)

	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{
			"dir": tmpDir,
		},
	})
	require.NoError(t, err)

	hub := notify.NewHub()
	pool := pipeline.NewPool(1, 4)
	pipelineService := pipeline.NewService(docRepo, unitRepo, translationRepo,
		extract.NewTextExtractor(store), echoTranslator{}, hub, pool, pipeline.Options{ChunkSize: 30})

	deps := handler.RouterDeps{
		Documents: handler.NewDocumentHandler(service.NewDocumentService(docRepo, store)),
		Units:     handler.NewUnitHandler(service.NewUnitService(docRepo, unitRepo, translationRepo)),
		Pipeline:  handler.NewPipelineHandler(pipelineService),
		Events:    handler.NewEventsHandler(hub, docRepo),
		JWTSecret: testJWTSecret,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, func() {
		pool.Close()
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}

func issueToken(t *testing.T, ownerID string) string {
	t.Helper()
	token, err := jwt.GenerateToken(ownerID, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}
