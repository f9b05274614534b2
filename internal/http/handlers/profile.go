package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	authsvc "github.com/Peekay0523/MadidiMarket/internal/service/auth"
	"github.com/Peekay0523/MadidiMarket/internal/service/catalog"
)

// ProfileService cubre el perfil propio.
type ProfileService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in authsvc.UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
}

// OwnerBusinessProvider resuelve el negocio del dueño para GET /me.
type OwnerBusinessProvider interface {
	MyBusiness(ctx context.Context, ownerID string) (*domain.Business, error)
}

type ProfileHandler struct {
	Svc        ProfileService
	Businesses OwnerBusinessProvider
}

func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/me", h.me)
	r.Put("/me", h.update)
	r.Post("/me/password", h.changePassword)
}

type meOut struct {
	User     userView      `json:"user"`
	Business *businessView `json:"business,omitempty"`
}

func (h *ProfileHandler) me(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r.Context())
	u, err := h.Svc.Me(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	out := meOut{User: renderUser(u)}
	if u.Role == domain.RoleBusinessOwner && h.Businesses != nil {
		b, err := h.Businesses.MyBusiness(r.Context(), userID)
		switch {
		case err == nil:
			bv := renderBusiness(b)
			out.Business = &bv
		case errors.Is(err, catalog.ErrNoBusiness):
			// dueño sin negocio registrado todavía
		default:
			WriteServiceError(w, r, err)
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type updateProfileIn struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request) {
	var in updateProfileIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	u, err := h.Svc.UpdateProfile(r.Context(), httpx.UserIDFrom(r.Context()), authsvc.UpdateProfileInput{
		FullName: in.FullName,
		Phone:    in.Phone,
		Address:  in.Address,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderUser(u))
}

type changePasswordIn struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *ProfileHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in changePasswordIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if in.CurrentPassword == "" || in.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "faltan current_password o new_password", 1100)
		return
	}

	if err := h.Svc.ChangePassword(r.Context(), httpx.UserIDFrom(r.Context()), in.CurrentPassword, in.NewPassword); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
