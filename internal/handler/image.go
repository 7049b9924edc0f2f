package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/service"
)

const maxUploadSize = 10 << 20 // 10MB

// ImageHandler handles product image upload and retrieval.
type ImageHandler struct {
	images *service.ImageService
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(images *service.ImageService) *ImageHandler {
	return &ImageHandler{images: images}
}

// HandleUpload stores a multipart image sent in the "product" field.
// POST /upload
// Response: {"success":1,"image_url":"..."}
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	// Allow some slack over the file limit for the multipart envelope.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeFailure(w, http.StatusBadRequest, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("product")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "no image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload", "error", err)
		writeFailure(w, http.StatusBadRequest, "could not read upload")
		return
	}

	_, url, err := h.images.Upload(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, "upload image", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": 1, "image_url": url})
}

// HandleServe serves image bytes with the sniffed Content-Type.
// GET /images/{key}
func (h *ImageHandler) HandleServe(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.images.Open(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("serve image", "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
