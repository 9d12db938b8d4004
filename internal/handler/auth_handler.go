package handler

import (
	"context"
	"net/http"

	"go-auth-portal/internal/metrics"
	"go-auth-portal/internal/middleware"
	"go-auth-portal/internal/model"
)

type loginExecutor interface {
	Execute(ctx context.Context, req model.LoginRequest) (model.LoginResult, error)
}

type registerExecutor interface {
	Execute(ctx context.Context, req model.RegisterRequest) (model.RegisterResult, error)
}

type logoutExecutor interface {
	Execute(ctx context.Context, token string) model.LogoutResult
}

type authEventRecorder interface {
	RecordAuthEvent(event string, outcome string)
}

type AuthHandler struct {
	login    loginExecutor
	register registerExecutor
	logout   logoutExecutor
	events   authEventRecorder
	cookies  CookieOptions
}

func NewAuthHandler(login loginExecutor, register registerExecutor, logout logoutExecutor, events authEventRecorder, cookies CookieOptions) *AuthHandler {
	return &AuthHandler{login: login, register: register, logout: logout, events: events, cookies: cookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.register.Execute(r.Context(), payload)
	if err != nil {
		h.record("register", metrics.OutcomeFailure)
		writeError(w, r, err)
		return
	}

	h.record("register", metrics.OutcomeSuccess)
	writeSuccess(w, http.StatusCreated, result)
}

// Login sets the session cookie. The token itself is never part of the body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.login.Execute(r.Context(), payload)
	if err != nil {
		h.record("login", metrics.OutcomeFailure)
		writeError(w, r, err)
		return
	}

	h.record("login", metrics.OutcomeSuccess)
	setSessionCookie(w, result.Token, h.cookies)
	writeSuccess(w, http.StatusOK, result)
}

// Logout always succeeds and always clears the cookie, even for a missing or
// already expired token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	result := h.logout.Execute(r.Context(), middleware.TokenFromRequest(r))

	h.record("logout", metrics.OutcomeSuccess)
	clearSessionCookie(w, h.cookies)
	writeSuccess(w, http.StatusOK, result)
}

func (h *AuthHandler) record(event string, outcome string) {
	if h.events != nil {
		h.events.RecordAuthEvent(event, outcome)
	}
}
