package handlers

import (
	"errors"
	"net/http"

	"github.com/kevinaaaquil/onestopbooks/middleware"
	"github.com/kevinaaaquil/onestopbooks/models"
	"github.com/kevinaaaquil/onestopbooks/service"
)

type AccountsHandler struct {
	*Pages
	Sessions *middleware.Sessions
}

func signedIn(r *http.Request) bool {
	_, ok := middleware.SessionFromContext(r.Context())
	return ok
}

func signupFromForm(r *http.Request) models.SignupForm {
	return models.SignupForm{
		Username:    r.PostFormValue("username"),
		Password1:   r.PostFormValue("password1"),
		Password2:   r.PostFormValue("password2"),
		FirstName:   r.PostFormValue("first_name"),
		LastName:    r.PostFormValue("last_name"),
		Email:       r.PostFormValue("email"),
		PhoneNumber: r.PostFormValue("phone_number"),
		Address1:    r.PostFormValue("address_1"),
		Address2:    r.PostFormValue("address_2"),
		City:        r.PostFormValue("city"),
		State:       r.PostFormValue("state"),
		ZipCode:     r.PostFormValue("zip_code"),
	}
}

// echoForm keeps what the visitor typed, minus passwords.
func echoForm(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if k == "password" || k == "password1" || k == "password2" || len(v) == 0 {
			continue
		}
		out[k] = v[0]
	}
	return out
}

func (h *AccountsHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if signedIn(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	pg := h.page(r, "Sign up")
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "signup.html", pg)
		return
	}

	_, _, err := h.Accounts.Signup(r.Context(), signupFromForm(r))
	if err == nil {
		http.Redirect(w, r, "/login/", http.StatusFound)
		return
	}
	fe, ok := service.AsFormErrors(err)
	if !ok {
		h.serverError(w, r, err)
		return
	}
	pg.Form = echoForm(r)
	pg.Errors = fe
	h.render(w, r, http.StatusOK, "signup.html", pg)
}

func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	if signedIn(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	pg := h.page(r, "Log in")
	if r.Method != http.MethodPost {
		pg.Next = r.URL.Query().Get("next")
		h.render(w, r, http.StatusOK, "login.html", pg)
		return
	}

	form := models.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	user, err := h.Accounts.Login(r.Context(), form)
	if err != nil {
		fe, isForm := service.AsFormErrors(err)
		if !isForm && !errors.Is(err, service.ErrInvalidCredentials) {
			h.serverError(w, r, err)
			return
		}
		pg.Form = echoForm(r)
		pg.Errors = fe
		pg.Next = r.PostFormValue("next")
		pg.Error = "Please enter a correct username and password. Note that both fields may be case-sensitive."
		h.render(w, r, http.StatusOK, "login.html", pg)
		return
	}

	token, err := h.Sessions.Issue(user)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.Sessions.SetCookie(w, token)
	http.Redirect(w, r, localPath(r.PostFormValue("next"), "/"), http.StatusFound)
}

func (h *AccountsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
