package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doctran/doctran/internal/pkg/errcode"
)

func multipartPDF(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeResponse(t *testing.T, resp *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var result struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	return result.Code, result.Data
}

func TestDocumentUploadRequiresAuth(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	body, contentType := multipartPDF(t, "paper.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	code, _ := decodeResponse(t, resp)
	require.Equal(t, errcode.ErrUnauthorized, code)
}

func TestDocumentUploadRejectsNonPDF(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token := issueToken(t, "upload-owner-1")
	body, contentType := multipartPDF(t, "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	code, _ := decodeResponse(t, resp)
	require.Equal(t, errcode.ErrInvalid, code)
}

func TestDocumentGetMissing(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	token := issueToken(t, "upload-owner-1")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	code, _ := decodeResponse(t, resp)
	require.Equal(t, errcode.ErrNotFound, code)
}
