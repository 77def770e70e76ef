package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/gateway"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/observability"
)

type loginForm struct {
	Username string
	Redirect string
}

type registerForm struct {
	Username string
	Email    string
	Phone    string
}

// LoginPage shows the login form. Logged in users are not sent away.
func (v *Views) LoginPage(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusOK, "login", loginForm{Redirect: r.URL.Query().Get(navigation.RedirectParam)}, "")
}

// Login authenticates and continues to the page that asked for it
func (v *Views) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	creds := domain.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	form := loginForm{Username: creds.Username, Redirect: r.URL.Query().Get(navigation.RedirectParam)}

	if creds.Username == "" || creds.Password == "" {
		v.render(w, r, http.StatusUnprocessableEntity, "login", form, "Please enter username and password")
		return
	}

	user, err := v.store(r).Login(r.Context(), creds)
	if err != nil {
		v.render(w, r, statusFor(err), "login", form, errorMessage(err))
		return
	}

	observability.FromContext(r.Context()).Info("user logged in", slog.String("username", user.Username))
	http.Redirect(w, r, navigation.ReturnTarget(r.URL.Query()), http.StatusSeeOther)
}

// RegisterPage shows the registration form
func (v *Views) RegisterPage(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusOK, "register", registerForm{}, "")
}

// Register creates an account and sends the user to log in
func (v *Views) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reg := domain.Registration{
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Phone:           strings.TrimSpace(r.PostFormValue("phone")),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	}
	form := registerForm{Username: reg.Username, Email: reg.Email, Phone: reg.Phone}

	if reg.Password != reg.PasswordConfirm {
		v.render(w, r, http.StatusUnprocessableEntity, "register", form, "Passwords do not match")
		return
	}

	if _, err := v.store(r).Register(r.Context(), reg); err != nil {
		if errors.Is(err, gateway.ErrUnauthenticated) {
			v.fail(w, r, err)
			return
		}
		v.render(w, r, statusFor(err), "register", form, errorMessage(err))
		return
	}

	http.Redirect(w, r, navigation.LoginPath, http.StatusSeeOther)
}

// Logout ends the session locally
func (v *Views) Logout(w http.ResponseWriter, r *http.Request) {
	v.store(r).Logout(r.Context())
	http.Redirect(w, r, navigation.HomePath, http.StatusSeeOther)
}
