package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/onestopbooks/middleware"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/kevinaaaquil/onestopbooks/web"
)

// Deps are the services the storefront routes are built from.
type Deps struct {
	Renderer     web.Renderer
	Catalog      *service.Catalog
	Accounts     *service.Accounts
	Checkout     *service.Checkout
	Reviews      *service.Reviews
	Sessions     *middleware.Sessions
	Thumbnails   service.ThumbnailStore
	LoginLimiter *middleware.RateLimiter
}

// Mount registers the HTML pages and the JSON API on r.
func Mount(r chi.Router, d Deps) {
	pages := &Pages{Renderer: d.Renderer, Accounts: d.Accounts, Checkout: d.Checkout}
	catalog := &CatalogHandler{Pages: pages, Catalog: d.Catalog, Reviews: d.Reviews}
	cart := &CartHandler{Pages: pages}
	accounts := &AccountsHandler{Pages: pages, Sessions: d.Sessions}
	reviews := &ReviewsHandler{Pages: pages, Reviews: d.Reviews}
	thumbs := &ThumbnailsHandler{Catalog: d.Catalog, Store: d.Thumbnails}
	api := &APIHandler{
		Catalog:    d.Catalog,
		Reviews:    d.Reviews,
		Accounts:   d.Accounts,
		Checkout:   d.Checkout,
		Sessions:   d.Sessions,
		Thumbnails: d.Thumbnails,
	}
	limit := func(h http.Handler) http.Handler { return h }
	if d.LoginLimiter != nil {
		limit = d.LoginLimiter.Handler
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Sessions.Load)

		r.Get("/", catalog.Home)
		r.Get("/books/", catalog.Books)
		r.Post("/books/", catalog.Books)
		r.Get("/aboutus/", catalog.AboutUs)
		r.Get("/randombooks/", catalog.RandomBooks)
		r.Get("/booksunder/", catalog.BooksUnder)
		r.Get("/newestbooks/", catalog.NewestBooks)
		r.Get("/bookstore/search", catalog.Search)
		r.Post("/bookstore/search", catalog.Search)
		r.Get("/product/{isbn}", catalog.Product)
		r.Get("/thumbnails/{isbn}", thumbs.Thumbnail)

		r.Get("/cart/", cart.Cart)
		r.Get("/checkout/", cart.CheckoutPage)
		r.Get("/successcheckout/", cart.SuccessCheckout)

		r.With(limit).Get("/login/", accounts.Login)
		r.With(limit).Post("/login/", accounts.Login)
		r.With(limit).Get("/signup/", accounts.Signup)
		r.With(limit).Post("/signup/", accounts.Signup)
		r.Get("/logout/", accounts.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Post("/cart/add/{isbn}", cart.Add)
			r.Post("/cart/remove/{isbn}", cart.Remove)
			r.Post("/submit_review/{isbn}", reviews.Submit)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowAll())
		r.Use(d.Sessions.Load)
		r.With(limit).Post("/auth/login", api.Login)
		r.Get("/books", api.Books)
		r.Get("/books/{isbn}", api.Book)
		r.With(middleware.RequireAuth).Get("/cart", api.Cart)
	})
}
