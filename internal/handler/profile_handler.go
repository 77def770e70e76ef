package handler

import (
	"net/http"
	"strings"

	"welfarewatch-web/internal/domain"
)

// Profile shows the current user's profile
func (v *Views) Profile(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusOK, "profile", nil, "")
}

// UpdateProfile saves profile changes; the returned profile replaces the
// session user.
func (v *Views) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	update := domain.ProfileUpdate{
		Email:  strings.TrimSpace(r.PostFormValue("email")),
		Phone:  strings.TrimSpace(r.PostFormValue("phone")),
		Avatar: strings.TrimSpace(r.PostFormValue("avatar")),
		Bio:    strings.TrimSpace(r.PostFormValue("bio")),
	}

	if _, err := v.store(r).UpdateProfile(r.Context(), update); err != nil {
		if statusFor(err) == http.StatusUnprocessableEntity {
			v.render(w, r, statusFor(err), "profile", nil, errorMessage(err))
			return
		}
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// ChangePassword changes the current user's password
func (v *Views) ChangePassword(w http.ResponseWriter, r *http.Request) {
	change := domain.PasswordChange{
		OldPassword:        r.PostFormValue("old_password"),
		NewPassword:        r.PostFormValue("new_password"),
		NewPasswordConfirm: r.PostFormValue("new_password_confirm"),
	}
	if change.NewPassword != change.NewPasswordConfirm {
		v.render(w, r, http.StatusUnprocessableEntity, "profile", nil, "Passwords do not match")
		return
	}

	if err := v.backend.ChangePassword(r.Context(), change); err != nil {
		if statusFor(err) == http.StatusUnprocessableEntity {
			v.render(w, r, statusFor(err), "profile", nil, errorMessage(err))
			return
		}
		v.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
