package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
	authsvc "github.com/Peekay0523/MadidiMarket/internal/service/auth"
)

// EmailFlowsService cubre reset de contraseña y verificación de email.
type EmailFlowsService interface {
	ForgotPassword(ctx context.Context, email, userAgent, ip string) (debugLink string, err error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email, userAgent, ip string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}

type EmailFlowsHandler struct {
	Svc     EmailFlowsService
	Limiter rate.MultiLimiter

	ForgotBudget httpx.RateConfig
	ResetBudget  httpx.RateConfig
}

// Register monta las rutas públicas del flujo de emails.
func (h *EmailFlowsHandler) Register(r chi.Router) {
	r.Post("/auth/forgot", h.forgot)
	r.Post("/auth/reset", h.reset)
	r.Post("/auth/verify-email/confirm", h.verifyConfirm)
}

// RegisterProtected monta el reenvío de verificación (requiere bearer).
func (h *EmailFlowsHandler) RegisterProtected(r chi.Router) {
	r.Post("/auth/verify-email/request", h.verifyRequest)
}

type forgotIn struct {
	Email string `json:"email"`
}

type forgotOut struct {
	Status    string `json:"status"`
	DebugLink string `json:"debug_link,omitempty"`
}

// forgot responde 200 {"status":"ok"} exista o no la cuenta. El link
// sólo se expone con debug_echo_links activo, nunca en prod.
func (h *EmailFlowsHandler) forgot(w http.ResponseWriter, r *http.Request) {
	var in forgotIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if !httpx.EnforceForgotLimit(w, r, h.Limiter, h.ForgotBudget, in.Email) {
		return
	}

	link, err := h.Svc.ForgotPassword(r.Context(), in.Email, r.UserAgent(), httpx.ClientIP(r))
	if err != nil {
		if errors.Is(err, authsvc.ErrMissingFields) {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "falta email", 1100)
			return
		}
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, forgotOut{Status: "ok", DebugLink: link})
}

type resetIn struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *EmailFlowsHandler) reset(w http.ResponseWriter, r *http.Request) {
	var in resetIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if !httpx.EnforceResetLimit(w, r, h.Limiter, h.ResetBudget) {
		return
	}

	if err := h.Svc.ResetPassword(r.Context(), in.Token, in.NewPassword); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type verifyConfirmIn struct {
	Token string `json:"token"`
}

func (h *EmailFlowsHandler) verifyConfirm(w http.ResponseWriter, r *http.Request) {
	var in verifyConfirmIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if err := h.Svc.VerifyEmail(r.Context(), in.Token); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *EmailFlowsHandler) verifyRequest(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.Me(r.Context(), httpx.UserIDFrom(r.Context()))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	if err := h.Svc.ResendVerification(r.Context(), u.Email, r.UserAgent(), httpx.ClientIP(r)); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
