// Package memory is an in-memory implementation of store.Store. It is safe for
// concurrent use and is meant for tests and local development.
package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu         sync.RWMutex
	books      map[primitive.ObjectID]models.Book
	users      map[primitive.ObjectID]models.User
	customers  map[primitive.ObjectID]models.Customer
	orders     map[primitive.ObjectID]models.Order
	orderItems map[primitive.ObjectID]models.OrderItem
	rentItems  map[primitive.ObjectID]models.RentItem
	reviews    map[primitive.ObjectID]models.ReviewRating
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		books:      make(map[primitive.ObjectID]models.Book),
		users:      make(map[primitive.ObjectID]models.User),
		customers:  make(map[primitive.ObjectID]models.Customer),
		orders:     make(map[primitive.ObjectID]models.Order),
		orderItems: make(map[primitive.ObjectID]models.OrderItem),
		rentItems:  make(map[primitive.ObjectID]models.RentItem),
		reviews:    make(map[primitive.ObjectID]models.ReviewRating),
	}
}

func newID(id primitive.ObjectID) primitive.ObjectID {
	if id.IsZero() {
		return primitive.NewObjectID()
	}
	return id
}

// Books

func (s *Store) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.ISBN == book.ISBN {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	b := *book
	b.ID = newID(b.ID)
	s.books[b.ID] = b
	return b.ID, nil
}

func (s *Store) BookByISBN(_ context.Context, isbn string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ISBN == isbn {
			return &b, nil
		}
	}
	return nil, nil
}

func (s *Store) BooksByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Book
	for _, id := range ids {
		if b, ok := s.books[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) FindBooks(_ context.Context, q models.BookQuery) ([]models.Book, error) {
	s.mu.RLock()
	var out []models.Book
	for _, b := range s.books {
		if q.Matches(b) {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	// map iteration is random; settle on insertion order before applying the key
	models.SortBooks(out, models.SortFeatured)
	models.SortBooks(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) SampleBooks(_ context.Context, n int) ([]models.Book, error) {
	s.mu.RLock()
	all := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		all = append(all, b)
	}
	s.mu.RUnlock()

	rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *Store) DecrementStock(_ context.Context, id primitive.ObjectID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok || b.Quantity < n {
		return store.ErrInsufficientStock
	}
	b.Quantity -= n
	s.books[id] = b
	return nil
}

func (s *Store) IncrementStock(_ context.Context, id primitive.ObjectID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return store.ErrNotFound
	}
	b.Quantity += n
	s.books[id] = b
	return nil
}

// Accounts

func (s *Store) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	u := *user
	u.ID = newID(u.ID)
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) DeleteUser(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *Store) CreateCustomer(_ context.Context, c *models.Customer) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.customers {
		if existing.UserID == c.UserID {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	cust := *c
	cust.ID = newID(cust.ID)
	s.customers[cust.ID] = cust
	return cust.ID, nil
}

func (s *Store) CustomerByUserID(_ context.Context, userID primitive.ObjectID) (*models.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.customers {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, nil
}

// Orders

func (s *Store) PendingOrder(_ context.Context, customerID primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.Order
	for _, o := range s.orders {
		if o.CustomerID != customerID || o.Complete {
			continue
		}
		if found == nil || o.CreatedAt.After(found.CreatedAt) {
			o := o
			found = &o
		}
	}
	return found, nil
}

func (s *Store) CreateOrder(_ context.Context, o *models.Order) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order := *o
	order.ID = newID(order.ID)
	s.orders[order.ID] = order
	return order.ID, nil
}

func (s *Store) CompleteOrder(_ context.Context, orderID primitive.ObjectID, transactionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Complete {
		return store.ErrNotFound
	}
	o.Complete = true
	o.TransactionID = transactionID
	o.CompletedAt = &at
	s.orders[orderID] = o
	return nil
}

func (s *Store) OrderItems(_ context.Context, orderID primitive.ObjectID) ([]models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.OrderItem
	for _, it := range s.orderItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *Store) RentItems(_ context.Context, orderID primitive.ObjectID) ([]models.RentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RentItem
	for _, it := range s.rentItems {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (s *Store) AddOrderItem(_ context.Context, orderID, bookID primitive.ObjectID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.orderItems {
		if it.OrderID == orderID && it.BookID == bookID {
			it.Quantity += n
			s.orderItems[id] = it
			return nil
		}
	}
	id := primitive.NewObjectID()
	s.orderItems[id] = models.OrderItem{ID: id, OrderID: orderID, BookID: bookID, Quantity: n, AddedAt: time.Now()}
	return nil
}

func (s *Store) AddRentItem(_ context.Context, orderID, bookID primitive.ObjectID, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.rentItems {
		if it.OrderID == orderID && it.BookID == bookID {
			it.Quantity += n
			s.rentItems[id] = it
			return nil
		}
	}
	id := primitive.NewObjectID()
	s.rentItems[id] = models.RentItem{ID: id, OrderID: orderID, BookID: bookID, Quantity: n, AddedAt: time.Now()}
	return nil
}

func (s *Store) RemoveOrderItem(_ context.Context, orderID, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.orderItems {
		if it.OrderID == orderID && it.BookID == bookID {
			delete(s.orderItems, id)
		}
	}
	return nil
}

func (s *Store) RemoveRentItem(_ context.Context, orderID, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.rentItems {
		if it.OrderID == orderID && it.BookID == bookID {
			delete(s.rentItems, id)
		}
	}
	return nil
}

// Reviews

func (s *Store) InsertReview(_ context.Context, r *models.ReviewRating) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev := *r
	rev.ID = newID(rev.ID)
	s.reviews[rev.ID] = rev
	return rev.ID, nil
}

func (s *Store) ReviewsForBook(_ context.Context, bookID primitive.ObjectID) ([]models.ReviewRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ReviewRating
	for _, r := range s.reviews {
		if r.BookID == bookID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
