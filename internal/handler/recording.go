// Package handler contains the HTTP API surface.
//
// This file implements practice recording upload and retrieval.
//
// Routes handled:
//   - POST   /api/recordings        -> Upload
//   - GET    /api/recordings/{key...} -> Serve
//   - DELETE /api/recordings/{key...} -> Delete
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/elijahtye/Tonr/internal/auth"
	"github.com/elijahtye/Tonr/internal/domain"
	"github.com/elijahtye/Tonr/internal/metrics"
	"github.com/elijahtye/Tonr/internal/storage"
)

// maxRecordingSize caps uploaded audio at 25MB. A few minutes of
// uncompressed WAV fits well under this.
const maxRecordingSize = 25 << 20

// recordingURLExpiry is how long presigned recording URLs stay valid.
const recordingURLExpiry = 15 * time.Minute

// RecordingHandler handles practice recording HTTP requests.
type RecordingHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewRecordingHandler creates a new RecordingHandler.
func NewRecordingHandler(store storage.Storage, logger *slog.Logger) *RecordingHandler {
	return &RecordingHandler{
		storage: store,
		logger:  logger,
	}
}

// RegisterRoutes registers recording routes on the provided mux.
//
// All routes require authentication via the requireUser middleware.
func (h *RecordingHandler) RegisterRoutes(mux *http.ServeMux, requireUser func(http.Handler) http.Handler) {
	mux.Handle("POST /api/recordings", requireUser(http.HandlerFunc(h.Upload)))
	mux.Handle("GET /api/recordings/{key...}", requireUser(http.HandlerFunc(h.Serve)))
	mux.Handle("DELETE /api/recordings/{key...}", requireUser(http.HandlerFunc(h.Delete)))
}

// recordingView is the JSON shape of an uploaded recording.
type recordingView struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Upload accepts a multipart audio upload and stores it for the
// authenticated user. The form field name is "recording".
func (h *RecordingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "handler.recording_upload"

	user := auth.GetUser(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRecordingSize+(1<<20))
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		metrics.RecordingUploadsTotal.WithLabelValues("rejected").Inc()
		ErrorResponse(w, r, h.logger, domain.Errorf(domain.ETOOLARGE, op, "Recording exceeds maximum size"))
		return
	}

	file, fileHeader, err := r.FormFile("recording")
	if err != nil {
		metrics.RecordingUploadsTotal.WithLabelValues("rejected").Inc()
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "Missing recording file"))
		return
	}
	defer func() { _ = file.Close() }()

	contentType := storage.DetectContentType(
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Filename,
		nil,
	)
	if !storage.IsAllowedAudioType(contentType) {
		metrics.RecordingUploadsTotal.WithLabelValues("rejected").Inc()
		ErrorResponse(w, r, h.logger, domain.Invalid(op,
			fmt.Sprintf("Unsupported audio format %q", contentType)))
		return
	}

	filename := fileHeader.Filename
	if filepath.Ext(filename) == "" {
		filename += storage.ExtensionForContentType(contentType)
	}
	key := storage.RecordingKey(user.ID, filename)

	err = h.storage.Put(r.Context(), key, file, storage.PutOptions{
		ContentType: contentType,
		MaxSize:     maxRecordingSize,
	})
	if err != nil {
		if storage.IsTooLarge(err) {
			metrics.RecordingUploadsTotal.WithLabelValues("rejected").Inc()
			ErrorResponse(w, r, h.logger, domain.Errorf(domain.ETOOLARGE, op, "Recording exceeds maximum size"))
			return
		}
		metrics.RecordingUploadsTotal.WithLabelValues("error").Inc()
		h.logger.Error("failed to store recording",
			"error", err,
			"user_id", user.ID,
			"key", key,
		)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	metrics.RecordingUploadsTotal.WithLabelValues("success").Inc()
	metrics.RecordingUploadBytes.Add(float64(fileHeader.Size))

	url, err := h.storage.URL(r.Context(), key, recordingURLExpiry)
	if err != nil {
		// The upload itself succeeded; return the key without a URL.
		h.logger.Warn("failed to generate recording URL", "error", err, "key", key)
		url = ""
	}

	h.logger.Info("recording uploaded",
		"user_id", user.ID,
		"key", key,
		"content_type", contentType,
		"size_bytes", fileHeader.Size,
	)

	respondJSON(w, http.StatusCreated, recordingView{
		Key:         key,
		URL:         url,
		ContentType: contentType,
		SizeBytes:   fileHeader.Size,
	})
}

// Serve redirects to a short-lived URL for the recording.
func (h *RecordingHandler) Serve(w http.ResponseWriter, r *http.Request) {
	const op = "handler.recording_serve"

	user := auth.GetUser(r.Context())

	key := r.PathValue("key")
	if !h.ownsKey(user, key) {
		NotFoundResponse(w, r, h.logger)
		return
	}

	exists, err := h.storage.Exists(r.Context(), key)
	if err != nil {
		h.logger.Error("failed to check recording", "error", err, "key", key)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}
	if !exists {
		NotFoundResponse(w, r, h.logger)
		return
	}

	url, err := h.storage.URL(r.Context(), key, recordingURLExpiry)
	if err != nil {
		h.logger.Error("failed to generate recording URL", "error", err, "key", key)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// Delete removes a recording owned by the authenticated user.
func (h *RecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	key := r.PathValue("key")
	if !h.ownsKey(user, key) {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if err := h.storage.Delete(r.Context(), key); err != nil {
		h.logger.Error("failed to delete recording", "error", err, "key", key)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownsKey reports whether the key sits under the user's recording
// prefix. Keys for other users 404 rather than 403 so key existence
// is not leaked.
func (h *RecordingHandler) ownsKey(user *domain.User, key string) bool {
	prefix := fmt.Sprintf("recordings/%s/", user.ID)
	return strings.HasPrefix(key, prefix) && !strings.Contains(key, "..")
}
