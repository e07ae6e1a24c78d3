package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"cluster-ledger-backend/internal/logger"
	"cluster-ledger-backend/internal/storage"

	"github.com/gorilla/mux"
)

// imageHandler serves stored profile pictures.
type imageHandler struct {
	files storage.FileStorage
}

func (h *imageHandler) serve(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	rc, err := h.files.ReadFile(r.Context(), key)
	if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidKey) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "image not found"})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeFor(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.Warn("Failed to stream image", "key", key, "error", err)
	}
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
