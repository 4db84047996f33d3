package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/middleware"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/kevinaaaquil/onestopbooks/store/memory"
	"github.com/kevinaaaquil/onestopbooks/web"
	"github.com/stretchr/testify/require"
)

// recordingRenderer remembers which page was rendered last.
type recordingRenderer struct {
	inner *web.Templates
	name  string
	page  *web.Page
}

func (r *recordingRenderer) Render(w http.ResponseWriter, status int, name string, data *web.Page) error {
	r.name = name
	r.page = data
	return r.inner.Render(w, status, name, data)
}

type testServer struct {
	router   http.Handler
	store    *memory.Store
	renderer *recordingRenderer
	catalog  *service.Catalog
	accounts *service.Accounts
	checkout *service.Checkout
	sessions *middleware.Sessions
}

func newTestServer(t *testing.T, thumbs service.ThumbnailStore) *testServer {
	t.Helper()
	tmpl, err := web.New()
	require.NoError(t, err)

	st := memory.New()
	catalog := service.NewCatalog(st, nil, 0)
	s := &testServer{
		store:    st,
		renderer: &recordingRenderer{inner: tmpl},
		catalog:  catalog,
		accounts: service.NewAccounts(st),
		checkout: service.NewCheckout(st, catalog, nil),
		sessions: middleware.NewSessions("test-secret", time.Hour, false),
	}
	r := chi.NewRouter()
	Mount(r, Deps{
		Renderer:   s.renderer,
		Catalog:    catalog,
		Accounts:   s.accounts,
		Checkout:   s.checkout,
		Reviews:    service.NewReviews(st, catalog),
		Sessions:   s.sessions,
		Thumbnails: thumbs,
	})
	s.router = r
	return s
}

func (s *testServer) addBook(t *testing.T, isbn, title string, price int64, qty int) {
	t.Helper()
	_, err := s.catalog.AddBook(context.Background(), models.BookInput{
		ISBN: isbn, Title: title, Authors: "Author of " + title, Price: price, Quantity: qty,
	})
	require.NoError(t, err)
}

func signupValues(username string) url.Values {
	return url.Values{
		"username":     {username},
		"password1":    {"12345abcde!"},
		"password2":    {"12345abcde!"},
		"first_name":   {"John"},
		"last_name":    {"Doe"},
		"email":        {"johndoe@gmail.com"},
		"phone_number": {"1234567890"},
		"address_1":    {"123 Main St"},
		"city":         {"Anytown"},
		"state":        {"CA"},
		"zip_code":     {"12345"},
	}
}

// login creates an account and returns a valid session cookie for it.
func (s *testServer) login(t *testing.T, username string) (*http.Cookie, *models.Customer) {
	t.Helper()
	form := models.SignupForm{}
	v := signupValues(username)
	form.Username, form.Password1, form.Password2 = v.Get("username"), v.Get("password1"), v.Get("password2")
	form.FirstName, form.LastName, form.Email = v.Get("first_name"), v.Get("last_name"), v.Get("email")
	form.Address1, form.City, form.State, form.ZipCode = v.Get("address_1"), v.Get("city"), v.Get("state"), v.Get("zip_code")
	user, customer, err := s.accounts.Signup(context.Background(), form)
	require.NoError(t, err)
	token, err := s.sessions.Issue(user)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}, customer
}

func (s *testServer) get(path string, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) post(path string, values url.Values, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) quantity(t *testing.T, isbn string) int {
	t.Helper()
	b, err := s.catalog.Book(context.Background(), isbn)
	require.NoError(t, err)
	return b.Quantity
}
