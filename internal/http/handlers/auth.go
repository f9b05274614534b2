package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
	authsvc "github.com/Peekay0523/MadidiMarket/internal/service/auth"
)

// AuthService es lo que el handler necesita del servicio de cuentas.
type AuthService interface {
	Register(ctx context.Context, in authsvc.RegisterInput) (*authsvc.RegisterResult, error)
	Login(ctx context.Context, in authsvc.LoginInput) (*authsvc.LoginResult, error)
	Refresh(ctx context.Context, refreshPlaintext, userAgent, ip string) (*authsvc.TokenPair, error)
	Logout(ctx context.Context, refreshPlaintext string) error
	LogoutAll(ctx context.Context, userID string) (int, error)
}

type AuthHandler struct {
	Svc         AuthService
	Limiter     rate.MultiLimiter
	LoginBudget httpx.RateConfig
}

// Register monta las rutas públicas de sesión.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
	r.Post("/auth/logout", h.logout)
}

// RegisterProtected monta las rutas que requieren bearer.
func (h *AuthHandler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout_all", h.logoutAll)
}

func renderTokens(t *authsvc.TokenPair) *tokensView {
	if t == nil {
		return nil
	}
	return &tokensView{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
	}
}

type registerIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type registerOut struct {
	User            userView    `json:"user"`
	Tokens          *tokensView `json:"tokens,omitempty"`
	ApprovalPending bool        `json:"approval_pending,omitempty"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in registerIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	res, err := h.Svc.Register(r.Context(), authsvc.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FullName:  in.FullName,
		Role:      domain.Role(in.Role),
		Phone:     in.Phone,
		Address:   in.Address,
		UserAgent: r.UserAgent(),
		IP:        httpx.ClientIP(r),
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}

	out := registerOut{
		User:            renderUser(res.User),
		Tokens:          renderTokens(res.Tokens),
		ApprovalPending: res.User.Role == domain.RoleBusinessOwner && !res.User.Approved,
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginOut struct {
	User   userView    `json:"user"`
	Tokens *tokensView `json:"tokens"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if !httpx.EnforceLoginLimit(w, r, h.Limiter, h.LoginBudget, in.Email) {
		return
	}

	res, err := h.Svc.Login(r.Context(), authsvc.LoginInput{
		Email:     in.Email,
		Password:  in.Password,
		UserAgent: r.UserAgent(),
		IP:        httpx.ClientIP(r),
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, loginOut{
		User:   renderUser(res.User),
		Tokens: renderTokens(res.Tokens),
	})
}

type refreshIn struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if in.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "falta refresh_token", 1100)
		return
	}

	pair, err := h.Svc.Refresh(r.Context(), in.RefreshToken, r.UserAgent(), httpx.ClientIP(r))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderTokens(pair))
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	var in refreshIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	if in.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "falta refresh_token", 1100)
		return
	}
	if err := h.Svc.Logout(r.Context(), in.RefreshToken); err != nil {
		WriteServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) logoutAll(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r.Context())
	n, err := h.Svc.LogoutAll(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int{"revoked": n})
}
