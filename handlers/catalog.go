package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
)

type CatalogHandler struct {
	*Pages
	Catalog *service.Catalog
	Reviews *service.Reviews
}

func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.Newest(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pg := h.page(r, "Home")
	pg.Books = books
	h.render(w, r, http.StatusOK, "home.html", pg)
}

// Books lists the catalog. GET shows featured order; POST reads the sort key
// from the book-filterd field.
func (h *CatalogHandler) Books(w http.ResponseWriter, r *http.Request) {
	key := models.SortFeatured
	if r.Method == http.MethodPost {
		key = models.ParseSortKey(r.PostFormValue("book-filterd"))
	}
	books, err := h.Catalog.List(r.Context(), key)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pg := h.page(r, "Books")
	pg.Books = books
	pg.SortKey = key
	pg.SortKeys = models.SortKeys
	h.render(w, r, http.StatusOK, "products.html", pg)
}

func (h *CatalogHandler) AboutUs(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "aboutus.html", h.page(r, "About us"))
}

func (h *CatalogHandler) RandomBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.Random(r.Context())
	h.genre(w, r, "Random picks", books, err)
}

func (h *CatalogHandler) BooksUnder(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.Bargains(r.Context())
	h.genre(w, r, fmt.Sprintf("Books under $%d", h.Catalog.BargainPrice()), books, err)
}

func (h *CatalogHandler) NewestBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.Catalog.Newest(r.Context())
	h.genre(w, r, "Newest books", books, err)
}

func (h *CatalogHandler) genre(w http.ResponseWriter, r *http.Request, heading string, books []models.Book, err error) {
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pg := h.page(r, heading)
	pg.Heading = heading
	pg.Books = books
	h.render(w, r, http.StatusOK, "genre-products.html", pg)
}

// Search matches the searched field against titles and authors. GET shows an
// empty search page.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	pg := h.page(r, "Search")
	if r.Method == http.MethodPost {
		pg.Query = r.PostFormValue("searched")
		books, err := h.Catalog.Search(r.Context(), pg.Query)
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		pg.Books = books
	}
	h.render(w, r, http.StatusOK, "search.html", pg)
}

func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	bp, err := h.Reviews.ForBook(r.Context(), chi.URLParam(r, "isbn"))
	if errors.Is(err, service.ErrBookNotFound) {
		h.notFound(w, r, "Book not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pg := h.page(r, bp.Book.Title)
	pg.Book = bp.Book
	pg.Reviews = bp.Reviews
	pg.Average = bp.Average
	h.render(w, r, http.StatusOK, "product.html", pg)
}
