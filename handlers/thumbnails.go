package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/rs/zerolog"
)

type ThumbnailsHandler struct {
	Catalog *service.Catalog
	Store   service.ThumbnailStore // nil when S3 is not configured
}

// Thumbnail streams a book's stored cover image. GET /thumbnails/{isbn}
func (h *ThumbnailsHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	book, err := h.Catalog.Book(r.Context(), chi.URLParam(r, "isbn"))
	if errors.Is(err, service.ErrBookNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("thumbnail lookup")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if book.ThumbnailKey == "" || h.Store == nil {
		http.NotFound(w, r)
		return
	}
	body, contentType, err := h.Store.OpenThumbnail(r.Context(), book.ThumbnailKey)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("key", book.ThumbnailKey).Msg("open thumbnail")
		http.Error(w, "failed to load thumbnail", http.StatusBadGateway)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, body); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("stream thumbnail")
	}
}
