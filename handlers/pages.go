package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/kevinaaaquil/onestopbooks/middleware"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
	"github.com/kevinaaaquil/onestopbooks/web"
	"github.com/rs/zerolog"
)

// Pages holds what every HTML handler needs to build and render a page.
type Pages struct {
	Renderer web.Renderer
	Accounts *service.Accounts
	Checkout *service.Checkout
}

// page starts the template data for a request, filling in the visitor and cart size.
func (p *Pages) page(r *http.Request, title string) *web.Page {
	pg := &web.Page{Title: title}
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return pg
	}
	pg.Username = sess.Username
	customer, err := p.Accounts.Customer(r.Context(), sess.UserID)
	if err != nil {
		if !errors.Is(err, service.ErrNoCustomer) {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("load customer for page")
		}
		return pg
	}
	if cart, err := p.Checkout.Cart(r.Context(), customer.ID); err == nil {
		pg.CartItems = cart.ItemCount()
	}
	return pg
}

// customer returns the signed-in visitor's profile, or nil for anonymous visitors.
func (p *Pages) customer(r *http.Request) (*models.Customer, error) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return nil, nil
	}
	c, err := p.Accounts.Customer(r.Context(), sess.UserID)
	if errors.Is(err, service.ErrNoCustomer) {
		return nil, nil
	}
	return c, err
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data *web.Page) {
	if err := p.Renderer.Render(w, status, name, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (p *Pages) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	pg := p.page(r, "Error")
	p.render(w, r, http.StatusInternalServerError, "error.html", pg)
}

func (p *Pages) notFound(w http.ResponseWriter, r *http.Request, heading string) {
	pg := p.page(r, "Not found")
	pg.Heading = heading
	pg.Error = "We couldn't find what you were looking for."
	p.render(w, r, http.StatusNotFound, "error.html", pg)
}

// localPath returns target when it is a path on this site, fallback otherwise.
func localPath(target, fallback string) string {
	if target == "" {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || len(u.Path) == 0 || u.Path[0] != '/' {
		return fallback
	}
	if len(u.Path) > 1 && u.Path[1] == '/' {
		return fallback
	}
	return u.RequestURI()
}

// crossSite reports whether the browser marked the request as coming from
// another site. Requests without Sec-Fetch-Site or Referer are not.
func crossSite(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Site") == "cross-site" {
		return true
	}
	if ref := r.Referer(); ref != "" {
		u, err := url.Parse(ref)
		return err != nil || u.Host != r.Host
	}
	return false
}

// sameSiteReferer returns the Referer's path when it points back at this host.
func sameSiteReferer(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host {
		return fallback
	}
	return localPath(ref.RequestURI(), fallback)
}
