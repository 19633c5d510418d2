package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/semcache/internal/config"
	"github.com/lumenlearn/semcache/internal/domain"
	"github.com/lumenlearn/semcache/internal/generator/static"
	"github.com/lumenlearn/semcache/internal/safety"
	"github.com/lumenlearn/semcache/internal/store"
)

func newTestHandler() *Handler {
	orchestrator := domain.NewCacheOrchestrator(
		store.NewMemoryStore(), nil, nil, nil,
		static.NewGenerator(), safety.NewFilter(), domain.DefaultPolicy())
	return NewHandler(orchestrator, &config.IndexConfig{})
}

func postGenerate(t *testing.T, handler *Handler, req domain.GenerationRequest) *httptest.ResponseRecorder {
	t.Helper()

	reqBody, err := json.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/content/generate", bytes.NewReader(reqBody))
	w := httptest.NewRecorder()
	handler.HandleGenerate(w, httpReq)
	return w
}

func TestHandleGenerate_MissAndHit(t *testing.T) {
	handler := newTestHandler()
	req := domain.GenerationRequest{
		Topic:      "Photosynthesis and the light reactions",
		Difficulty: "Beginner",
		Subject:    "Biology",
	}

	w := postGenerate(t, handler, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var first domain.LookupResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&first))
	require.False(t, first.Cached)
	require.NotEmpty(t, first.ArtifactID)
	require.Contains(t, first.Content, "Photosynthesis")

	w = postGenerate(t, handler, req)
	require.Equal(t, http.StatusOK, w.Code)

	var second domain.LookupResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&second))
	require.True(t, second.Cached)
	require.Equal(t, first.ArtifactID, second.ArtifactID)
	require.InDelta(t, 1.0, second.Similarity, 1e-9)
}

func TestHandleGenerate_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler()

	httpReq := httptest.NewRequest(http.MethodGet, "/v1/content/generate", nil)
	w := httptest.NewRecorder()

	handler.HandleGenerate(w, httpReq)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleGenerate_InvalidJSON(t *testing.T) {
	handler := newTestHandler()

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/content/generate", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	handler.HandleGenerate(w, httpReq)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerate_MissingTopic(t *testing.T) {
	handler := newTestHandler()

	w := postGenerate(t, handler, domain.GenerationRequest{Subject: "Biology"})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerate_UnsafeRequest(t *testing.T) {
	handler := newTestHandler()

	w := postGenerate(t, handler, domain.GenerationRequest{Topic: "how to make a bomb at home"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "request rejected")
}

func TestHandleGenerate_PIIRequest(t *testing.T) {
	handler := newTestHandler()

	w := postGenerate(t, handler, domain.GenerationRequest{
		Topic:   "Email etiquette",
		Subject: "writing to john.doe@example.com",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "email")
}

func TestHandleIndexStatus(t *testing.T) {
	handler := newTestHandler()

	httpReq := httptest.NewRequest(http.MethodGet, "/v1/index/status", nil)
	w := httptest.NewRecorder()

	handler.HandleIndexStatus(w, httpReq)

	require.Equal(t, http.StatusOK, w.Code)

	var status map[string]domain.IndexStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	require.False(t, status["basis"].Available)
	require.False(t, status["content"].Available)
}

func TestHandleIndexRebuild_NoEmbedder(t *testing.T) {
	handler := newTestHandler()

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/index/rebuild", nil)
	w := httptest.NewRecorder()

	handler.HandleIndexRebuild(w, httpReq)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleIndexSave_NoIndexes(t *testing.T) {
	handler := newTestHandler()

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/index/save", nil)
	w := httptest.NewRecorder()

	handler.HandleIndexSave(w, httpReq)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "saved")
}

func TestHandleHealth(t *testing.T) {
	handler := newTestHandler()

	httpReq := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	handler.HandleHealth(w, httpReq)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, "healthy", response["status"])
}
