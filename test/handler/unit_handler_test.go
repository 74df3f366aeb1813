package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doctran/doctran/internal/model"
	"github.com/doctran/doctran/internal/pkg/errcode"
	"github.com/doctran/doctran/internal/repo"
	"github.com/doctran/doctran/test/testutil"
)

func TestUnitEndpoints(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	// seed the document directly; uploads need a real pdf
	db, dbCleanup := testutil.OpenTestDB(t)
	defer dbCleanup()
	docs := repo.NewDocumentRepo(db)
	now := time.Now().Unix()
	require.NoError(t, docs.Create(context.Background(), &model.Document{
		ID:          "unithandler-doc-1",
		OwnerID:     "unithandler-owner-1",
		Title:       "manual",
		FileKey:     "unithandler-doc-1.pdf",
		LanguageSrc: "en",
		LanguageTgt: "ko",
		Ctime:       now,
		Mtime:       now,
	}))

	token := issueToken(t, "unithandler-owner-1")

	do := func(method, path string, payload interface{}) *httptest.ResponseRecorder {
		var body *bytes.Reader
		if payload != nil {
			raw, err := json.Marshal(payload)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		} else {
			body = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	// empty texts rejected
	resp := do(http.MethodPost, "/api/v1/documents/unithandler-doc-1/units",
		map[string]interface{}{"texts": []string{}})
	code, _ := decodeResponse(t, resp)
	require.Equal(t, errcode.ErrInvalid, code)

	// create
	resp = do(http.MethodPost, "/api/v1/documents/unithandler-doc-1/units",
		map[string]interface{}{"texts": []string{"Hello.", "Goodbye."}})
	code, _ = decodeResponse(t, resp)
	require.Equal(t, 0, code)

	// conflict without overwrite
	resp = do(http.MethodPost, "/api/v1/documents/unithandler-doc-1/units",
		map[string]interface{}{"texts": []string{"Again."}})
	code, _ = decodeResponse(t, resp)
	require.Equal(t, errcode.ErrConflict, code)

	// list
	resp = do(http.MethodGet, "/api/v1/documents/unithandler-doc-1/units", nil)
	var listResult struct {
		Code int                      `json:"code"`
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listResult))
	require.Equal(t, 0, listResult.Code)
	require.Len(t, listResult.Data, 2)

	// progress over manually created units
	resp = do(http.MethodGet, "/api/v1/documents/unithandler-doc-1/translation-progress", nil)
	code, data := decodeResponse(t, resp)
	require.Equal(t, 0, code)
	require.EqualValues(t, 2, data["total"])
	require.EqualValues(t, 2, data["created"])
}
