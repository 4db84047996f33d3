package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/middleware"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/rs/zerolog"
)

const coverURLExpiry = 15 * time.Minute

// APIHandler serves the JSON API.
type APIHandler struct {
	Catalog    *service.Catalog
	Reviews    *service.Reviews
	Accounts   *service.Accounts
	Checkout   *service.Checkout
	Sessions   *middleware.Sessions
	Thumbnails service.ThumbnailStore
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type BookResponse struct {
	*service.BookPage
	CoverURL string `json:"coverUrl,omitempty"`
}

type CartResponse struct {
	*models.Cart
	Total     int64 `json:"total"`
	ItemCount int   `json:"itemCount"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Books lists the catalog. GET /api/books?sort=price_lh
func (h *APIHandler) Books(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.List(r.Context(), models.ParseSortKey(r.URL.Query().Get("sort")))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("api list books")
		jsonError(w, http.StatusInternalServerError, "failed to list books")
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// Book returns one book with its reviews. GET /api/books/{isbn}
func (h *APIHandler) Book(w http.ResponseWriter, r *http.Request) {
	bp, err := h.Reviews.ForBook(r.Context(), chi.URLParam(r, "isbn"))
	if errors.Is(err, service.ErrBookNotFound) {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("api get book")
		jsonError(w, http.StatusInternalServerError, "failed to load book")
		return
	}
	resp := BookResponse{BookPage: bp}
	if bp.Book.ThumbnailKey != "" && h.Thumbnails != nil {
		if u, err := h.Thumbnails.ThumbnailURL(r.Context(), bp.Book.ThumbnailKey, coverURLExpiry); err == nil {
			resp.CoverURL = u
		} else {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("presign cover")
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Cart returns the caller's pending order. GET /api/cart
func (h *APIHandler) Cart(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		jsonError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	customer, err := h.Accounts.Customer(r.Context(), sess.UserID)
	if errors.Is(err, service.ErrNoCustomer) {
		jsonError(w, http.StatusNotFound, "no customer profile")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("api cart customer")
		jsonError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	cart, err := h.Checkout.Cart(r.Context(), customer.ID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("api cart")
		jsonError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	writeJSON(w, http.StatusOK, CartResponse{Cart: cart, Total: cart.Total(), ItemCount: cart.ItemCount()})
}

// Login exchanges credentials for a bearer token. POST /api/auth/login
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid json")
		return
	}
	user, err := h.Accounts.Login(r.Context(), req)
	if fe, ok := service.AsFormErrors(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "username and password required", "fields": fe})
		return
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		jsonError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("api login")
		jsonError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := h.Sessions.Issue(user)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Username: user.Username})
}
