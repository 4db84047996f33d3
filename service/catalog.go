package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/store"
	"github.com/rs/zerolog"
)

const (
	DefaultBargainPrice int64 = 15
	RandomBooksLimit          = 12
	NewestBooksLimit          = 12
)

// Catalog serves book listings and owns stock changes.
type Catalog struct {
	books        store.BookStore
	cache        CatalogCache
	bargainPrice int64
	now          func() time.Time
}

func NewCatalog(books store.BookStore, cache CatalogCache, bargainPrice int64) *Catalog {
	if cache == nil {
		cache = NopCache{}
	}
	if bargainPrice <= 0 {
		bargainPrice = DefaultBargainPrice
	}
	return &Catalog{books: books, cache: cache, bargainPrice: bargainPrice, now: time.Now}
}

func (c *Catalog) BargainPrice() int64 { return c.bargainPrice }

// List returns every book in the order selected by key.
func (c *Catalog) List(ctx context.Context, key models.SortKey) ([]models.Book, error) {
	key = models.ParseSortKey(string(key))
	return c.cached(ctx, "sort:"+string(key), models.BookQuery{Sort: key})
}

// Bargains returns books priced at or under the bargain price, cheapest first.
func (c *Catalog) Bargains(ctx context.Context) ([]models.Book, error) {
	limit := c.bargainPrice
	return c.cached(ctx, "bargains", models.BookQuery{Sort: models.SortPriceLH, MaxPrice: &limit})
}

// Newest returns the most recently published books.
func (c *Catalog) Newest(ctx context.Context) ([]models.Book, error) {
	return c.cached(ctx, "newest", models.BookQuery{Sort: models.SortNewest, Limit: NewestBooksLimit})
}

// Random returns a random selection of books. It is never cached.
func (c *Catalog) Random(ctx context.Context) ([]models.Book, error) {
	books, err := c.books.SampleBooks(ctx, RandomBooksLimit)
	if err != nil {
		return nil, fmt.Errorf("sample books: %w", err)
	}
	return books, nil
}

// Search matches term against titles and authors, ignoring case. A blank term
// matches nothing.
func (c *Catalog) Search(ctx context.Context, term string) ([]models.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	books, err := c.books.FindBooks(ctx, models.BookQuery{Sort: models.SortTitlesAZ, Term: term})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (c *Catalog) cached(ctx context.Context, key string, q models.BookQuery) ([]models.Book, error) {
	books, gen, ok := c.cache.Get(ctx, key)
	if ok {
		return books, nil
	}
	books, err := c.books.FindBooks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}
	if err := c.cache.Set(ctx, gen, key, books); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("catalog cache set")
	}
	return books, nil
}

// Book returns the book with the ISBN or ErrBookNotFound.
func (c *Catalog) Book(ctx context.Context, isbn string) (*models.Book, error) {
	book, err := c.books.BookByISBN(ctx, strings.TrimSpace(isbn))
	if err != nil {
		return nil, fmt.Errorf("lookup book %q: %w", isbn, err)
	}
	if book == nil {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// AddBook validates and stores a new catalog entry.
func (c *Catalog) AddBook(ctx context.Context, in models.BookInput) (*models.Book, error) {
	in.ISBN = strings.TrimSpace(in.ISBN)
	if err := validateForm(in); err != nil {
		return nil, err
	}
	book := &models.Book{
		ISBN:         in.ISBN,
		Title:        in.Title,
		Authors:      in.Authors,
		YearPublic:   in.YearPublic,
		Publisher:    in.Publisher,
		ThumbnailURL: in.ThumbnailURL,
		ThumbnailKey: in.ThumbnailKey,
		Price:        in.Price,
		Quantity:     in.Quantity,
		CreatedAt:    c.now().UTC(),
	}
	id, err := c.books.InsertBook(ctx, book)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrBookExists
	}
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	book.ID = id
	c.Invalidate(ctx)
	return book, nil
}

// DecreaseQuantity takes n copies of a book out of stock. The stock never goes
// below zero; ErrInsufficientStock is returned instead.
func (c *Catalog) DecreaseQuantity(ctx context.Context, isbn string, n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	book, err := c.Book(ctx, isbn)
	if err != nil {
		return err
	}
	if err := c.books.DecrementStock(ctx, book.ID, n); err != nil {
		return fmt.Errorf("decrease stock of %s: %w", isbn, err)
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate drops cached listings. Failures are logged; the cache TTL bounds staleness.
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("catalog cache invalidate")
	}
}
