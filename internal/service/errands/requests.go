package errands

import (
	"context"
	"strings"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// ItemRequestInput es un pedido del tablero de demanda.
type ItemRequestInput struct {
	Kind        domain.RequestKind
	Title       string
	Description string
	CategoryID  string
	BudgetCents *domain.Cents
	ContactInfo string
}

// CreateItemRequest publica un pedido de producto o servicio que nadie
// ofrece todavía. La categoría es opcional pero debe existir si viene.
func (s *Service) CreateItemRequest(ctx context.Context, requesterID string, in ItemRequestInput) (*domain.ItemRequest, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("errands.requests"),
		logger.Op("CreateItemRequest"),
		logger.UserID(requesterID),
	)

	if in.Kind != domain.RequestKindProduct && in.Kind != domain.RequestKindService {
		return nil, ErrInvalidKind
	}
	title := strings.TrimSpace(in.Title)
	contact := strings.TrimSpace(in.ContactInfo)
	if title == "" || contact == "" {
		return nil, ErrMissingFields
	}
	if in.BudgetCents != nil && *in.BudgetCents < 0 {
		return nil, ErrInvalidAmount
	}

	var categoryID *string
	if id := strings.TrimSpace(in.CategoryID); id != "" {
		if _, err := s.deps.Store.GetCategoryByID(ctx, id); err != nil {
			return nil, err
		}
		categoryID = &id
	}

	r := &domain.ItemRequest{
		Kind:        in.Kind,
		RequesterID: requesterID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CategoryID:  categoryID,
		BudgetCents: in.BudgetCents,
		ContactInfo: contact,
	}
	if err := s.deps.Store.CreateItemRequest(ctx, r); err != nil {
		log.Error("create item request failed", logger.Err(err))
		return nil, err
	}

	log.Info("item request created",
		logger.String("request_id", r.ID),
		logger.String("kind", string(in.Kind)),
		logger.String("title", title),
	)
	return r, nil
}

// ListItemRequestsOptions acota el listado del tablero de demanda.
type ListItemRequestsOptions struct {
	Kind       domain.RequestKind
	Mine       bool
	CategoryID string
	Limit      int
	Offset     int
}

// ListItemRequests lista pedidos: el tablero abierto (sin cumplir) o
// los propios del usuario, que incluyen los ya cumplidos.
func (s *Service) ListItemRequests(ctx context.Context, viewerID string, opts ListItemRequestsOptions) ([]domain.ItemRequest, int, error) {
	if opts.Kind != domain.RequestKindProduct && opts.Kind != domain.RequestKindService {
		return nil, 0, ErrInvalidKind
	}
	f := pg.ItemRequestFilter{
		Kind:       string(opts.Kind),
		CategoryID: opts.CategoryID,
		Limit:      clampLimit(opts.Limit),
		Offset:     opts.Offset,
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if opts.Mine {
		f.RequesterID = viewerID
	}
	return s.deps.Store.ListItemRequests(ctx, f)
}

// ToggleItemRequestFulfilled invierte la marca de cumplido. Sólo el
// autor o un admin.
func (s *Service) ToggleItemRequestFulfilled(ctx context.Context, id, callerID string, callerRole domain.Role) (*domain.ItemRequest, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("errands.requests"),
		logger.Op("ToggleItemRequestFulfilled"),
		logger.String("request_id", id),
	)

	r, err := s.deps.Store.GetItemRequestByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != callerID && callerRole != domain.RoleAdmin {
		log.Debug("toggle rejected", logger.UserID(callerID))
		return nil, domain.ErrForbidden
	}
	if err := s.deps.Store.SetItemRequestFulfilled(ctx, id, r.RequesterID, !r.Fulfilled); err != nil {
		return nil, err
	}

	log.Info("item request toggled", logger.Bool("fulfilled", !r.Fulfilled))
	return s.deps.Store.GetItemRequestByID(ctx, id)
}

// DeleteItemRequest borra un pedido propio; un admin puede borrar
// cualquiera.
func (s *Service) DeleteItemRequest(ctx context.Context, id, callerID string, callerRole domain.Role) error {
	r, err := s.deps.Store.GetItemRequestByID(ctx, id)
	if err != nil {
		return err
	}
	if r.RequesterID != callerID && callerRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.deps.Store.DeleteItemRequest(ctx, id, r.RequesterID)
}
