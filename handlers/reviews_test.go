package handlers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "195153448", "Classical Mythology", 10, 10)
	cookie, _ := s.login(t, "johndoe")

	values := url.Values{"rate": {"5"}, "subject": {"Great"}, "review": {"Loved it"}}
	rec := s.post("/submit_review/195153448", values, cookie, "Referer", "http://example.com/product/195153448")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/product/195153448", rec.Header().Get("Location"))

	page, err := service.NewReviews(s.store, s.catalog).ForBook(context.Background(), "195153448")
	require.NoError(t, err)
	require.Len(t, page.Reviews, 1)
	require.Equal(t, "John Doe", page.Reviews[0].Author)

	s.get("/product/195153448", nil)
	require.Equal(t, "product.html", s.renderer.name)
	require.Len(t, s.renderer.page.Reviews, 1)
	require.InDelta(t, 5.0, s.renderer.page.Average, 0.001)
}

func TestSubmitReview_ForeignRefererFallsBack(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "1", "Zen", 10, 10)
	cookie, _ := s.login(t, "johndoe")

	rec := s.post("/submit_review/1", url.Values{"rate": {"3"}}, cookie, "Referer", "http://evil.example/x")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/product/1", rec.Header().Get("Location"))
}

func TestSubmitReview_Invalid(t *testing.T) {
	s := newTestServer(t, nil)
	s.addBook(t, "1", "Zen", 10, 10)
	cookie, _ := s.login(t, "johndoe")

	for _, rate := range []string{"9", "abc", ""} {
		rec := s.post("/submit_review/1", url.Values{"rate": {rate}, "subject": {"Hmm"}}, cookie)
		require.Equal(t, http.StatusOK, rec.Code, rate)
		require.Equal(t, "product.html", s.renderer.name)
		require.Contains(t, s.renderer.page.Errors, "rate")
		require.Equal(t, "Hmm", s.renderer.page.Form["subject"])
	}

	rec := s.post("/submit_review/1", url.Values{"rate": {"4"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/login/")

	rec = s.post("/submit_review/404", url.Values{"rate": {"4"}}, cookie)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
