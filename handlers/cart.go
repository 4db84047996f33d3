package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	*Pages
}

// currentCart loads the visitor's cart. Anonymous visitors get an empty one.
func (h *CartHandler) currentCart(r *http.Request) (*models.Customer, *models.Cart, error) {
	customer, err := h.customer(r)
	if err != nil || customer == nil {
		return nil, &models.Cart{}, err
	}
	cart, err := h.Checkout.Cart(r.Context(), customer.ID)
	return customer, cart, err
}

func (h *CartHandler) Cart(w http.ResponseWriter, r *http.Request) {
	h.showCart(w, r, "Cart", "cart.html")
}

func (h *CartHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	h.showCart(w, r, "Checkout", "checkout.html")
}

func (h *CartHandler) showCart(w http.ResponseWriter, r *http.Request, title, tmpl string) {
	_, cart, err := h.currentCart(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	pg := h.page(r, title)
	pg.Cart = cart
	h.render(w, r, http.StatusOK, tmpl, pg)
}

// Add puts a book in the cart. Fields: quantity (default 1), kind (buy or rent).
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customer(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if customer == nil {
		http.Redirect(w, r, "/login/", http.StatusFound)
		return
	}
	n := 1
	if v := strings.TrimSpace(r.PostFormValue("quantity")); v != "" {
		if n, err = strconv.Atoi(v); err != nil {
			http.Error(w, "quantity must be a whole number", http.StatusBadRequest)
			return
		}
	}
	kind := models.ParseLineKind(r.PostFormValue("kind"))
	err = h.Checkout.AddToCart(r.Context(), customer.ID, chi.URLParam(r, "isbn"), kind, n)
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		h.notFound(w, r, "Book not found")
		return
	case errors.Is(err, service.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart/", http.StatusFound)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customer(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if customer == nil {
		http.Redirect(w, r, "/login/", http.StatusFound)
		return
	}
	kind := models.ParseLineKind(r.PostFormValue("kind"))
	err = h.Checkout.RemoveFromCart(r.Context(), customer.ID, chi.URLParam(r, "isbn"), kind)
	if errors.Is(err, service.ErrBookNotFound) {
		h.notFound(w, r, "Book not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/cart/", http.StatusFound)
}

// SuccessCheckout completes the visitor's pending order. Anonymous visitors and
// empty carts see the success page with nothing committed. Links from other
// sites land on the checkout page instead of placing the order.
func (h *CartHandler) SuccessCheckout(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customer(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if customer != nil && crossSite(r) {
		zerolog.Ctx(r.Context()).Warn().Str("referer", r.Referer()).Msg("cross-site checkout refused")
		http.Redirect(w, r, "/checkout/", http.StatusSeeOther)
		return
	}
	var receipt *service.Receipt
	if customer != nil {
		receipt, err = h.Checkout.Complete(r.Context(), customer)
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			receipt = nil
		case errors.Is(err, service.ErrInsufficientStock):
			_, cart, cerr := h.currentCart(r)
			if cerr != nil {
				h.serverError(w, r, cerr)
				return
			}
			pg := h.page(r, "Checkout")
			pg.Cart = cart
			pg.Error = "Some books in your cart are no longer available in that quantity. Please update your cart."
			h.render(w, r, http.StatusConflict, "checkout.html", pg)
			return
		case err != nil:
			h.serverError(w, r, err)
			return
		}
	}
	pg := h.page(r, "Thank you")
	pg.Receipt = receipt
	h.render(w, r, http.StatusOK, "checkout-success.html", pg)
}
