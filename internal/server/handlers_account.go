package server

import (
	"net/http"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/httputil"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	session, err := a.accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, r, session)
	httputil.WriteJSON(w, http.StatusCreated, session)
	return nil
}

func (a *API) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	session, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, r, session)
	httputil.WriteJSON(w, http.StatusOK, session)
	return nil
}

func (a *API) account(w http.ResponseWriter, r *http.Request) error {
	user, err := a.accounts.Me(r.Context(), caller(r))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, user)
	return nil
}

func (a *API) updateAccount(w http.ResponseWriter, r *http.Request) error {
	var patch auth.AccountPatch
	if err := httputil.ReadJSON(r, &patch); err != nil {
		return err
	}
	user, err := a.accounts.UpdateAccount(r.Context(), caller(r), patch)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, user)
	return nil
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) error {
	var req passwordRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		return err
	}
	if err := a.accounts.ChangePassword(r.Context(), caller(r), req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
	return nil
}
