package handler

import (
	"context"
	"net/http"

	"go-auth-portal/internal/middleware"
	"go-auth-portal/internal/model"
)

type profileService interface {
	GetProfile(ctx context.Context, userID string) (model.PublicUser, error)
	UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (model.PublicUser, error)
	DeleteAccount(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) (model.UserList, error)
}

type UserHandler struct {
	profiles profileService
	logout   logoutExecutor
	cookies  CookieOptions
}

func NewUserHandler(profiles profileService, logout logoutExecutor, cookies CookieOptions) *UserHandler {
	return &UserHandler{profiles: profiles, logout: logout, cookies: cookies}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
		return
	}

	user, err := h.profiles.GetProfile(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
		return
	}

	var payload model.UpdateProfileRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.profiles.UpdateProfile(r.Context(), auth.UserID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

// DeleteMe removes the account and revokes the token used for the request.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	auth, ok := middleware.AuthFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
		return
	}

	if err := h.profiles.DeleteAccount(r.Context(), auth.UserID); err != nil {
		writeError(w, r, err)
		return
	}

	h.logout.Execute(r.Context(), auth.Token)
	clearSessionCookie(w, h.cookies)
	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.profiles.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, users)
}
