package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lumenlearn/semcache/internal/config"
	"github.com/lumenlearn/semcache/internal/domain"
	"github.com/lumenlearn/semcache/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	orchestrator *domain.CacheOrchestrator
	index        *config.IndexConfig
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(orchestrator *domain.CacheOrchestrator, index *config.IndexConfig) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		index:        index,
	}
}

// HandleGenerate processes content generation requests.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request.
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.Topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}

	logger := observability.FromContext(ctx)
	logger.Info("generation request received",
		zap.String("topic", req.Topic),
		zap.String("subject", req.Subject),
		zap.String("difficulty", req.Difficulty),
	)

	result, err := h.orchestrator.LookupOrGenerate(ctx, &req)
	if err != nil {
		if domain.IsUnsafeRequest(err) {
			logger.Warn("request rejected", zap.Error(err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("generation failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("generation succeeded",
		zap.Bool("cached", result.Cached),
		zap.Float64("similarity", result.Similarity),
	)

	writeJSON(w, http.StatusOK, result)
}

// HandleIndexStatus reports vector index diagnostics.
func (h *Handler) HandleIndexStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, h.orchestrator.Status())
}

// HandleIndexRebuild replays the artifact store into the vector indexes.
func (h *Handler) HandleIndexRebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := observability.FromContext(r.Context())

	indexed, err := h.orchestrator.RebuildIndexes(r.Context())
	if err != nil {
		logger.Error("index rebuild failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"indexed": indexed})
}

// HandleIndexSave persists the vector indexes to their configured paths.
func (h *Handler) HandleIndexSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := observability.FromContext(r.Context())

	if err := h.orchestrator.SaveIndexes(h.index.BasisSavePath, h.index.ContentSavePath); err != nil {
		logger.Error("index save failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// HandleIndexLoad restores the vector indexes from their configured paths.
func (h *Handler) HandleIndexLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logger := observability.FromContext(r.Context())

	if err := h.orchestrator.LoadIndexes(h.index.BasisSavePath, h.index.ContentSavePath); err != nil {
		logger.Error("index load failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Already written status, can't change it.
		return
	}
}
