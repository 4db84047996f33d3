package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/stretchr/testify/require"
)

func TestPages_Templates(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "195153448", "Classical Mythology", 10, 10)

	tests := []struct {
		path string
		tmpl string
	}{
		{"/", "home.html"},
		{"/books/", "products.html"},
		{"/aboutus/", "aboutus.html"},
		{"/checkout/", "checkout.html"},
		{"/cart/", "cart.html"},
		{"/login/", "login.html"},
		{"/signup/", "signup.html"},
		{"/product/195153448", "product.html"},
		{"/successcheckout/", "checkout-success.html"},
		{"/randombooks/", "genre-products.html"},
		{"/booksunder/", "genre-products.html"},
		{"/newestbooks/", "genre-products.html"},
		{"/bookstore/search", "search.html"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := s.get(tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, tt.tmpl, s.renderer.name)
		})
	}
}

func TestPages_ProductNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.get("/product/0000", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "error.html", s.renderer.name)
}

func TestPages_SortedListing(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "1", "Zen", 20, 1)
	s.addBook(t, "2", "Animal Farm", 9, 1)

	rec := s.post("/books/", url.Values{"book-filterd": {"price_hl"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.SortPriceHL, s.renderer.page.SortKey)
	require.Equal(t, "Zen", s.renderer.page.Books[0].Title)

	rec = s.post("/books/", url.Values{"book-filterd": {"nonsense"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, models.SortFeatured, s.renderer.page.SortKey)
	require.Equal(t, "Zen", s.renderer.page.Books[0].Title)

	s.post("/books/", url.Values{"book-filterd": {"titles_az"}}, nil)
	require.Equal(t, "Animal Farm", s.renderer.page.Books[0].Title)
}

func TestPages_GenreListings(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "1", "Pricey", 40, 1)
	s.addBook(t, "2", "Cheap", 5, 1)
	s.addBook(t, "3", "Exactly", 15, 1)

	s.get("/booksunder/", nil)
	require.Len(t, s.renderer.page.Books, 2)
	require.Equal(t, "Cheap", s.renderer.page.Books[0].Title)
	require.Equal(t, "Books under $15", s.renderer.page.Heading)
}

func TestPages_Search(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "1", "Classical Mythology", 10, 1)
	s.addBook(t, "2", "Clara Callan", 10, 1)

	rec := s.post("/bookstore/search", url.Values{"searched": {"myth"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "search.html", s.renderer.name)
	require.Len(t, s.renderer.page.Books, 1)
	require.Contains(t, rec.Body.String(), "Classical Mythology")
}

func TestPages_HeaderShowsUserAndCartCount(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "1", "Zen", 20, 5)
	cookie, _ := s.login(t, "johndoe")
	s.post("/cart/add/1", url.Values{"quantity": {"2"}}, cookie)

	rec := s.get("/", cookie)
	require.Equal(t, "johndoe", s.renderer.page.Username)
	require.Equal(t, 1, s.renderer.page.CartItems)
	require.Contains(t, rec.Body.String(), "Cart (1)")
}
