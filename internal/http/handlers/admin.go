package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	adminsvc "github.com/Peekay0523/MadidiMarket/internal/service/admin"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// AdminService es la consola de administración del marketplace.
type AdminService interface {
	ListUsers(ctx context.Context, role string, approved *bool, limit, offset int) ([]domain.User, int, error)
	ListPendingOwners(ctx context.Context) ([]pg.PendingOwner, error)
	ApproveBusinessOwner(ctx context.Context, actorID, userID string, notify bool) (*domain.User, error)
	SetUserDisabled(ctx context.Context, actorID, userID string, disabled bool) error

	ListBusinesses(ctx context.Context, limit, offset int) ([]domain.Business, int, error)
	ListOrders(ctx context.Context, status string, limit, offset int) ([]domain.Order, int, error)
	ListPayments(ctx context.Context, status, method string, limit, offset int) ([]domain.Payment, int, error)
	VerifyPayment(ctx context.Context, actorID, paymentID string) (*domain.Payment, error)

	Stats(ctx context.Context) (*adminsvc.Stats, error)
}

type AdminHandler struct {
	Svc AdminService
}

// Register monta las rutas de administración; el router ya exige rol
// admin antes de llegar acá.
func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/admin/users", h.listUsers)
	r.Get("/admin/users/pending", h.listPendingOwners)
	r.Post("/admin/users/{id}/approve", h.approve)
	r.Post("/admin/users/{id}/disable", h.setDisabled(true))
	r.Post("/admin/users/{id}/enable", h.setDisabled(false))

	r.Get("/admin/businesses", h.listBusinesses)
	r.Get("/admin/orders", h.listOrders)
	r.Get("/admin/payments", h.listPayments)
	r.Post("/admin/payments/{id}/verify", h.verifyPayment)

	r.Get("/admin/stats", h.stats)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	q := r.URL.Query()

	var approved *bool
	switch q.Get("approved") {
	case "true":
		t := true
		approved = &t
	case "false":
		f := false
		approved = &f
	}

	us, total, err := h.Svc.ListUsers(r.Context(), q.Get("role"), approved, limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderUsers(us), page, total))
}

func (h *AdminHandler) listPendingOwners(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Svc.ListPendingOwners(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": renderPendingOwners(ps)})
}

func (h *AdminHandler) approve(w http.ResponseWriter, r *http.Request) {
	u, err := h.Svc.ApproveBusinessOwner(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"), true)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderUser(u))
}

func (h *AdminHandler) setDisabled(disabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Svc.SetUserDisabled(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"), disabled); err != nil {
			WriteServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *AdminHandler) listBusinesses(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	bs, total, err := h.Svc.ListBusinesses(r.Context(), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderBusinesses(bs), page, total))
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	os, total, err := h.Svc.ListOrders(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderOrders(os), page, total))
}

func (h *AdminHandler) listPayments(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	q := r.URL.Query()
	ps, total, err := h.Svc.ListPayments(r.Context(), q.Get("status"), q.Get("method"), limit, offset)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newListEnvelope(renderPayments(ps), page, total))
}

func (h *AdminHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.VerifyPayment(r.Context(), httpx.UserIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderPayment(p))
}

type statsView struct {
	UsersByRole          map[string]int `json:"users_by_role"`
	Businesses           int            `json:"businesses"`
	Products             int            `json:"products"`
	Services             int            `json:"services"`
	OrdersByStatus       map[string]int `json:"orders_by_status"`
	PendingBankTransfers int            `json:"pending_bank_transfers"`
	RevenueCents         domain.Cents   `json:"revenue_cents"`
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statsView{
		UsersByRole:          st.UsersByRole,
		Businesses:           st.Businesses,
		Products:             st.Products,
		Services:             st.Services,
		OrdersByStatus:       st.OrdersByStatus,
		PendingBankTransfers: st.PendingBankTransfers,
		RevenueCents:         st.RevenueCents,
	})
}
