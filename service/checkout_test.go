package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCheckout_CartAggregation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "111", "Zen", "Pirsig", 20, 5)
	e.addBook(t, "222", "Animal Farm", "Orwell", 9, 5)

	cart, err := e.checkout.Cart(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, cart.Empty())
	require.Zero(t, cart.Total())
	require.Zero(t, cart.ItemCount())

	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 2))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 1))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "222", models.LineBuy, 1))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "222", models.LineRent, 4))

	cart, err = e.checkout.Cart(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3*20+9), cart.Total())
	require.Equal(t, 2, cart.ItemCount())
	require.Len(t, cart.Rentals, 1)

	require.NoError(t, e.checkout.RemoveFromCart(ctx, c.ID, "222", models.LineBuy))
	cart, err = e.checkout.Cart(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, int64(60), cart.Total())
	require.Equal(t, 1, cart.ItemCount())
	require.Len(t, cart.Rentals, 1)
}

func TestCheckout_AddToCartRejects(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "111", "Zen", "Pirsig", 20, 5)

	require.ErrorIs(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 0), ErrInvalidQuantity)
	require.ErrorIs(t, e.checkout.AddToCart(ctx, c.ID, "999", models.LineBuy, 1), ErrBookNotFound)
}

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []*Receipt
}

func (n *recordingNotifier) OrderConfirmed(_ context.Context, _ *models.Customer, r *Receipt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, r)
	return nil
}

// stalledNotifier behaves like an SMTP server that never answers.
type stalledNotifier struct {
	done chan error
}

func (n *stalledNotifier) OrderConfirmed(ctx context.Context, _ *models.Customer, _ *Receipt) error {
	<-ctx.Done()
	n.done <- ctx.Err()
	return ctx.Err()
}

func TestCheckout_CompleteDecrementsPurchasesAndRentals(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	notifier := &recordingNotifier{}
	e.checkout = NewCheckout(e.store, e.catalog, notifier)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e.checkout.now = func() time.Time { return fixed }
	e.checkout.newTxID = func() string { return "tx-1" }

	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "195153448", "Classical Mythology", "Mark P. O. Morford", 10, 10)
	e.addBook(t, "2005018", "Clara Callan", "Richard Bruce Wright", 12, 10)

	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "195153448", models.LineBuy, 4))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "2005018", models.LineRent, 1))

	receipt, err := e.checkout.Complete(ctx, c)
	require.NoError(t, err)
	require.Equal(t, "tx-1", receipt.TransactionID)
	require.True(t, receipt.Order.Complete)
	require.Equal(t, fixed, *receipt.Order.CompletedAt)
	require.Equal(t, int64(40), receipt.Cart.Total())

	require.Equal(t, 6, e.quantity(t, "195153448"))
	require.Equal(t, 9, e.quantity(t, "2005018"))
	e.checkout.Wait()
	require.Len(t, notifier.receipts, 1)

	// the completed order is no longer the cart
	cart, err := e.checkout.Cart(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, cart.Empty())
	_, err = e.checkout.Complete(ctx, c)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_CompleteDoesNotWaitForConfirmation(t *testing.T) {
	e := newTestEnv(t)
	notifier := &stalledNotifier{done: make(chan error, 1)}
	e.checkout = NewCheckout(e.store, e.catalog, notifier)
	e.checkout.notifyTimeout = 50 * time.Millisecond
	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "111", "Zen", "Pirsig", 20, 5)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 1))
	receipt, err := e.checkout.Complete(ctx, c)
	require.NoError(t, err)
	require.True(t, receipt.Order.Complete)
	cancel()

	select {
	case err := <-notifier.done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("confirmation was never abandoned")
	}
	e.checkout.Wait()
}

func TestCheckout_CompleteInsufficientStockChangesNothing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "111", "Zen", "Pirsig", 20, 5)
	e.addBook(t, "222", "Animal Farm", "Orwell", 9, 2)

	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 1))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "222", models.LineBuy, 2))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "222", models.LineRent, 1))

	_, err := e.checkout.Complete(ctx, c)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 5, e.quantity(t, "111"))
	require.Equal(t, 2, e.quantity(t, "222"))

	cart, err := e.checkout.Cart(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, cart.Order.Complete)
}

// racingStore loses a stock race on one book after the availability check passed.
type racingStore struct {
	OrderBookStore
	failOn primitive.ObjectID
}

func (s *racingStore) DecrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	if id == s.failOn {
		return ErrInsufficientStock
	}
	return s.OrderBookStore.DecrementStock(ctx, id, n)
}

func TestCheckout_CompleteRestoresStockOnPartialFailure(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "111", "Zen", "Pirsig", 20, 5)
	second := e.addBook(t, "222", "Animal Farm", "Orwell", 9, 5)
	e.checkout = NewCheckout(&racingStore{OrderBookStore: e.store, failOn: second.ID}, e.catalog, nil)

	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 3))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "222", models.LineBuy, 1))

	_, err := e.checkout.Complete(ctx, c)
	require.True(t, errors.Is(err, ErrInsufficientStock))
	require.Equal(t, 5, e.quantity(t, "111"))
	require.Equal(t, 5, e.quantity(t, "222"))
}

// disconnectingStore honours context cancellation like a database driver and
// cancels the request while one book's stock is being taken.
type disconnectingStore struct {
	OrderBookStore
	cancelOn primitive.ObjectID
	cancel   context.CancelFunc
}

func (s *disconnectingStore) DecrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	if id == s.cancelOn {
		s.cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.OrderBookStore.DecrementStock(ctx, id, n)
}

func (s *disconnectingStore) IncrementStock(ctx context.Context, id primitive.ObjectID, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.OrderBookStore.IncrementStock(ctx, id, n)
}

func TestCheckout_CompleteRestoresStockWhenRequestIsCancelled(t *testing.T) {
	e := newTestEnv(t)
	c := e.addCustomer(t, "jdoe")
	e.addBook(t, "111", "Zen", "Pirsig", 20, 5)
	second := e.addBook(t, "222", "Animal Farm", "Orwell", 9, 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.checkout = NewCheckout(&disconnectingStore{OrderBookStore: e.store, cancelOn: second.ID, cancel: cancel}, e.catalog, nil)
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "111", models.LineBuy, 3))
	require.NoError(t, e.checkout.AddToCart(ctx, c.ID, "222", models.LineBuy, 1))

	_, err := e.checkout.Complete(ctx, c)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 5, e.quantity(t, "111"))
	require.Equal(t, 5, e.quantity(t, "222"))

	cart, err := e.checkout.Cart(context.Background(), c.ID)
	require.NoError(t, err)
	require.False(t, cart.Order.Complete)
	require.Len(t, cart.Lines, 2)
}

func TestStockTakesMergesLinesPerBook(t *testing.T) {
	b := models.Book{ID: primitive.NewObjectID(), ISBN: "1"}
	cart := &models.Cart{
		Lines:   []models.CartLine{{Item: models.OrderItem{Quantity: 2}, Book: b}},
		Rentals: []models.RentLine{{Item: models.RentItem{Quantity: 1}, Book: b}},
	}
	takes := stockTakes(cart)
	require.Len(t, takes, 1)
	require.Equal(t, 3, takes[0].n)
}
