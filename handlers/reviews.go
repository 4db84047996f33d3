package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
)

type ReviewsHandler struct {
	*Pages
	Reviews *service.Reviews
}

// Submit stores a review from the product page and sends the visitor back
// where they came from.
func (h *ReviewsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	isbn := chi.URLParam(r, "isbn")
	customer, err := h.customer(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if customer == nil {
		http.Redirect(w, r, "/login/?next=/product/"+isbn, http.StatusFound)
		return
	}

	form := models.ReviewForm{
		Subject: r.PostFormValue("subject"),
		Review:  r.PostFormValue("review"),
	}
	if v := strings.TrimSpace(r.PostFormValue("rate")); v != "" {
		rate, convErr := strconv.Atoi(v)
		if convErr != nil {
			h.invalid(w, r, isbn, service.FormErrors{"rate": "Enter a whole number."})
			return
		}
		form.Rate = rate
	}

	_, err = h.Reviews.Submit(r.Context(), customer, isbn, form)
	if fe, ok := service.AsFormErrors(err); ok {
		h.invalid(w, r, isbn, fe)
		return
	}
	if errors.Is(err, service.ErrBookNotFound) {
		h.notFound(w, r, "Book not found")
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, sameSiteReferer(r, "/product/"+isbn), http.StatusFound)
}

// invalid shows the product page again with the review errors.
func (h *ReviewsHandler) invalid(w http.ResponseWriter, r *http.Request, isbn string, fe service.FormErrors) {
	bp, err := h.Reviews.ForBook(r.Context(), isbn)
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
	pg.Form = echoForm(r)
	pg.Errors = fe
	h.render(w, r, http.StatusOK, "product.html", pg)
}
