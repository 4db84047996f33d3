package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kevinaaaquil/onestopbooks/metrics"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/store"
)

// BookPage is a book with its reviews, newest first.
type BookPage struct {
	Book    *models.Book          `json:"book"`
	Reviews []models.ReviewRating `json:"reviews"`
	Average float64               `json:"average"`
}

type Reviews struct {
	store   store.ReviewStore
	catalog *Catalog
	now     func() time.Time
}

func NewReviews(s store.ReviewStore, catalog *Catalog) *Reviews {
	return &Reviews{store: s, catalog: catalog, now: time.Now}
}

// Submit records a customer's review of a book. Duplicate reviews are allowed.
func (r *Reviews) Submit(ctx context.Context, customer *models.Customer, isbn string, form models.ReviewForm) (*models.ReviewRating, error) {
	form.Subject = strings.TrimSpace(form.Subject)
	form.Review = strings.TrimSpace(form.Review)
	if err := validateForm(form); err != nil {
		return nil, err
	}
	book, err := r.catalog.Book(ctx, isbn)
	if err != nil {
		return nil, err
	}
	review := &models.ReviewRating{
		CustomerID: customer.ID,
		BookID:     book.ID,
		Author:     customer.String(),
		Subject:    form.Subject,
		Review:     form.Review,
		Rate:       form.Rate,
		CreatedAt:  r.now().UTC(),
	}
	if review.ID, err = r.store.InsertReview(ctx, review); err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	metrics.RecordReview()
	return review, nil
}

// ForBook loads the product page data for an ISBN.
func (r *Reviews) ForBook(ctx context.Context, isbn string) (*BookPage, error) {
	book, err := r.catalog.Book(ctx, isbn)
	if err != nil {
		return nil, err
	}
	reviews, err := r.store.ReviewsForBook(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("reviews for %s: %w", isbn, err)
	}
	if reviews == nil {
		reviews = []models.ReviewRating{}
	}
	return &BookPage{Book: book, Reviews: reviews, Average: models.AverageRate(reviews)}, nil
}
