package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kevinaaaquil/onestopbooks/metrics"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/store"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	compensationTimeout = 10 * time.Second
	notifyTimeout       = 30 * time.Second
)

// OrderBookStore is what Checkout needs from persistence.
type OrderBookStore interface {
	store.BookStore
	store.OrderStore
}

// Receipt describes a completed order.
type Receipt struct {
	Order         *models.Order `json:"order"`
	Cart          *models.Cart  `json:"cart"`
	TransactionID string        `json:"transactionId"`
}

// Checkout manages a customer's pending order.
type Checkout struct {
	store    OrderBookStore
	catalog  *Catalog
	notifier Notifier
	now      func() time.Time
	newTxID  func() string

	notifyTimeout time.Duration
	notifying     sync.WaitGroup
}

func NewCheckout(s OrderBookStore, catalog *Catalog, notifier Notifier) *Checkout {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Checkout{
		store:    s,
		catalog:  catalog,
		notifier: notifier,
		now:      time.Now,
		newTxID:  func() string { return uuid.New().String() },

		notifyTimeout: notifyTimeout,
	}
}

// Cart returns the customer's pending order with its lines. A customer without
// a pending order gets an empty cart.
func (c *Checkout) Cart(ctx context.Context, customerID primitive.ObjectID) (*models.Cart, error) {
	order, err := c.store.PendingOrder(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("pending order: %w", err)
	}
	if order == nil {
		return &models.Cart{}, nil
	}
	return c.load(ctx, order)
}

func (c *Checkout) load(ctx context.Context, order *models.Order) (*models.Cart, error) {
	items, err := c.store.OrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	rentals, err := c.store.RentItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("rent items: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(items)+len(rentals))
	for _, it := range items {
		ids = append(ids, it.BookID)
	}
	for _, it := range rentals {
		ids = append(ids, it.BookID)
	}
	books, err := c.store.BooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cart books: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	cart := &models.Cart{Order: order}
	for _, it := range items {
		b, ok := byID[it.BookID]
		if !ok {
			continue
		}
		cart.Lines = append(cart.Lines, models.CartLine{Item: it, Book: b})
	}
	for _, it := range rentals {
		b, ok := byID[it.BookID]
		if !ok {
			continue
		}
		cart.Rentals = append(cart.Rentals, models.RentLine{Item: it, Book: b})
	}
	return cart, nil
}

// AddToCart puts n copies of a book into the customer's pending order, opening
// one if needed. Adding a book already in the cart raises its quantity.
func (c *Checkout) AddToCart(ctx context.Context, customerID primitive.ObjectID, isbn string, kind models.LineKind, n int) error {
	if n <= 0 {
		return ErrInvalidQuantity
	}
	book, err := c.catalog.Book(ctx, isbn)
	if err != nil {
		return err
	}
	order, err := c.store.PendingOrder(ctx, customerID)
	if err != nil {
		return fmt.Errorf("pending order: %w", err)
	}
	if order == nil {
		order = &models.Order{CustomerID: customerID, CreatedAt: c.now().UTC()}
		if order.ID, err = c.store.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
	}
	if kind == models.LineRent {
		err = c.store.AddRentItem(ctx, order.ID, book.ID, n)
	} else {
		err = c.store.AddOrderItem(ctx, order.ID, book.ID, n)
	}
	if err != nil {
		return fmt.Errorf("add %s line: %w", kind, err)
	}
	return nil
}

// RemoveFromCart deletes a line from the pending order. Removing something that
// is not there is not an error.
func (c *Checkout) RemoveFromCart(ctx context.Context, customerID primitive.ObjectID, isbn string, kind models.LineKind) error {
	book, err := c.catalog.Book(ctx, isbn)
	if err != nil {
		return err
	}
	order, err := c.store.PendingOrder(ctx, customerID)
	if err != nil {
		return fmt.Errorf("pending order: %w", err)
	}
	if order == nil {
		return nil
	}
	if kind == models.LineRent {
		err = c.store.RemoveRentItem(ctx, order.ID, book.ID)
	} else {
		err = c.store.RemoveOrderItem(ctx, order.ID, book.ID)
	}
	if err != nil {
		return fmt.Errorf("remove %s line: %w", kind, err)
	}
	return nil
}

type stockTake struct {
	book models.Book
	n    int
}

// Complete checks out the customer's pending order: every purchased and rented
// line is taken from stock, then the order is marked complete. If any step
// fails the stock already taken is put back and the order stays pending.
func (c *Checkout) Complete(ctx context.Context, customer *models.Customer) (*Receipt, error) {
	logger := zerolog.Ctx(ctx)

	cart, err := c.Cart(ctx, customer.ID)
	if err != nil {
		metrics.RecordCheckout("error")
		return nil, err
	}
	if cart.Order == nil || cart.Empty() {
		metrics.RecordCheckout("empty")
		return nil, ErrEmptyCart
	}

	takes := stockTakes(cart)
	for _, t := range takes {
		if !t.book.InStock(t.n) {
			metrics.RecordCheckout("insufficient_stock")
			return nil, fmt.Errorf("%q has %d left, %d requested: %w", t.book.Title, t.book.Quantity, t.n, ErrInsufficientStock)
		}
	}

	var applied []stockTake
	// Stock is restored even when the request context is what failed.
	rollback := func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
		defer cancel()
		for _, t := range applied {
			if err := c.store.IncrementStock(rctx, t.book.ID, t.n); err != nil {
				logger.Error().Err(err).Str("isbn", t.book.ISBN).Int("copies", t.n).Msg("restore stock after failed checkout")
			}
		}
	}
	for _, t := range takes {
		if err := c.store.DecrementStock(ctx, t.book.ID, t.n); err != nil {
			rollback()
			if errors.Is(err, store.ErrInsufficientStock) {
				metrics.RecordCheckout("insufficient_stock")
				return nil, fmt.Errorf("%q: %w", t.book.Title, ErrInsufficientStock)
			}
			metrics.RecordCheckout("error")
			return nil, fmt.Errorf("decrement stock of %s: %w", t.book.ISBN, err)
		}
		applied = append(applied, t)
	}

	txID := c.newTxID()
	at := c.now().UTC()
	if err := c.store.CompleteOrder(ctx, cart.Order.ID, txID, at); err != nil {
		rollback()
		metrics.RecordCheckout("error")
		return nil, fmt.Errorf("complete order: %w", err)
	}
	cart.Order.Complete = true
	cart.Order.TransactionID = txID
	cart.Order.CompletedAt = &at

	c.catalog.Invalidate(context.WithoutCancel(ctx))
	metrics.RecordCheckout("completed")
	for _, l := range cart.Lines {
		metrics.RecordCopies(string(models.LineBuy), l.Item.Quantity)
	}
	for _, r := range cart.Rentals {
		metrics.RecordCopies(string(models.LineRent), r.Item.Quantity)
	}

	receipt := &Receipt{Order: cart.Order, Cart: cart, TransactionID: txID}
	c.notify(ctx, customer, receipt)
	logger.Info().Str("transactionId", txID).Int64("total", cart.Total()).Int("lines", len(cart.Lines)).Int("rentals", len(cart.Rentals)).Msg("order completed")
	return receipt, nil
}

// notify sends the confirmation in the background so a slow mail server does
// not hold up the response. It outlives the request but not notifyTimeout.
func (c *Checkout) notify(ctx context.Context, customer *models.Customer, receipt *Receipt) {
	logger := zerolog.Ctx(ctx)
	c.notifying.Add(1)
	go func() {
		defer c.notifying.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.notifyTimeout)
		defer cancel()
		if err := c.notifier.OrderConfirmed(nctx, customer, receipt); err != nil {
			logger.Warn().Err(err).Str("transactionId", receipt.TransactionID).Msg("order confirmation not sent")
		}
	}()
}

// Wait blocks until every confirmation started by Complete has finished.
func (c *Checkout) Wait() {
	c.notifying.Wait()
}

// stockTakes merges purchase and rental lines per book, keeping cart order.
func stockTakes(cart *models.Cart) []stockTake {
	var takes []stockTake
	index := make(map[primitive.ObjectID]int)
	add := func(b models.Book, n int) {
		if i, ok := index[b.ID]; ok {
			takes[i].n += n
			return
		}
		index[b.ID] = len(takes)
		takes = append(takes, stockTake{book: b, n: n})
	}
	for _, l := range cart.Lines {
		add(l.Book, l.Item.Quantity)
	}
	for _, r := range cart.Rentals {
		add(r.Book, r.Item.Quantity)
	}
	return takes
}
