package errands

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

type fakeStore struct {
	mu         sync.Mutex
	seq        int
	trips      map[string]*domain.ShoppingTrip
	shopReqs   map[string]*domain.ShoppingRequest
	shopReqIDs []string
	itemReqs   map[string]*domain.ItemRequest
	itemReqIDs []string
	categories map[string]*domain.Category
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		trips:      map[string]*domain.ShoppingTrip{},
		shopReqs:   map[string]*domain.ShoppingRequest{},
		itemReqs:   map[string]*domain.ItemRequest{},
		categories: map[string]*domain.Category{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) seedCategory(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("cat")
	f.categories[id] = &domain.Category{ID: id, Name: name}
	return id
}

func (f *fakeStore) CreateTrip(_ context.Context, t *domain.ShoppingTrip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextID("trip")
	t.CreatedAt = time.Now()
	cp := *t
	f.trips[t.ID] = &cp
	return nil
}

func (f *fakeStore) GetTripByID(_ context.Context, id string) (*domain.ShoppingTrip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *t
	out.ShopperName = "Shopper " + t.UserID
	return &out, nil
}

func (f *fakeStore) ListAvailableTrips(_ context.Context, limit, offset int) ([]domain.ShoppingTrip, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.ShoppingTrip
	now := time.Now()
	for _, t := range f.trips {
		if t.Status == domain.TripAvailable && t.EstimatedReturnTime.After(now) {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].PlannedDepartureTime.Before(all[j].PlannedDepartureTime)
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeStore) ListTripsByShopper(_ context.Context, shopperID string, limit, offset int) ([]domain.ShoppingTrip, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.ShoppingTrip
	for _, t := range f.trips {
		if t.UserID == shopperID {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].PlannedDepartureTime.After(all[j].PlannedDepartureTime)
	})
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeStore) UpdateTripStatus(_ context.Context, tripID, shopperID string, from, to domain.TripStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trips[tripID]
	if !ok || t.UserID != shopperID || t.Status != from {
		return domain.ErrConflict
	}
	t.Status = to
	return nil
}

func (f *fakeStore) CreateShoppingRequest(_ context.Context, r *domain.ShoppingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID("shopreq")
	r.CreatedAt = time.Now()
	cp := *r
	f.shopReqs[r.ID] = &cp
	f.shopReqIDs = append(f.shopReqIDs, r.ID)
	return nil
}

func (f *fakeStore) GetShoppingRequestByID(_ context.Context, id string) (*domain.ShoppingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.shopReqs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeStore) listShopReqs(match func(*domain.ShoppingRequest) bool, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	var all []domain.ShoppingRequest
	// Más nuevos primero.
	for i := len(f.shopReqIDs) - 1; i >= 0; i-- {
		if r := f.shopReqs[f.shopReqIDs[i]]; match(r) {
			all = append(all, *r)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeStore) ListShoppingRequestsMade(_ context.Context, requesterID string, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listShopReqs(func(r *domain.ShoppingRequest) bool { return r.RequesterID == requesterID }, limit, offset)
}

func (f *fakeStore) ListShoppingRequestsReceived(_ context.Context, shopperID string, limit, offset int) ([]domain.ShoppingRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listShopReqs(func(r *domain.ShoppingRequest) bool { return r.ShopperID == shopperID }, limit, offset)
}

func (f *fakeStore) UpdateShoppingRequestStatus(_ context.Context, id, shopperID string, from, to domain.ShoppingRequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.shopReqs[id]
	if !ok || r.ShopperID != shopperID || r.Status != from {
		return domain.ErrConflict
	}
	r.Status = to
	return nil
}

func (f *fakeStore) CreateItemRequest(_ context.Context, r *domain.ItemRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID("itemreq")
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.itemReqs[r.ID] = &cp
	f.itemReqIDs = append(f.itemReqIDs, r.ID)
	return nil
}

func (f *fakeStore) GetItemRequestByID(_ context.Context, id string) (*domain.ItemRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.itemReqs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeStore) ListItemRequests(_ context.Context, flt pg.ItemRequestFilter) ([]domain.ItemRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.ItemRequest
	for i := len(f.itemReqIDs) - 1; i >= 0; i-- {
		r := f.itemReqs[f.itemReqIDs[i]]
		if flt.RequesterID != "" {
			if r.RequesterID != flt.RequesterID {
				continue
			}
		} else if r.Fulfilled {
			continue
		}
		if flt.Kind != "" && string(r.Kind) != flt.Kind {
			continue
		}
		if flt.CategoryID != "" && (r.CategoryID == nil || *r.CategoryID != flt.CategoryID) {
			continue
		}
		all = append(all, *r)
	}
	total := len(all)
	if flt.Offset >= total {
		return nil, total, nil
	}
	end := flt.Offset + flt.Limit
	if end > total {
		end = total
	}
	return all[flt.Offset:end], total, nil
}

func (f *fakeStore) SetItemRequestFulfilled(_ context.Context, id, requesterID string, fulfilled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.itemReqs[id]
	if !ok || r.RequesterID != requesterID {
		return domain.ErrNotFound
	}
	r.Fulfilled = fulfilled
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) DeleteItemRequest(_ context.Context, id, requesterID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.itemReqs[id]
	if !ok || r.RequesterID != requesterID {
		return domain.ErrNotFound
	}
	delete(f.itemReqs, id)
	for i, rid := range f.itemReqIDs {
		if rid == id {
			f.itemReqIDs = append(f.itemReqIDs[:i], f.itemReqIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) CategoryDemand(_ context.Context, kind domain.RequestKind, since time.Time) ([]domain.CategoryDemand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, r := range f.itemReqs {
		if r.Kind != kind || r.CreatedAt.Before(since) {
			continue
		}
		name := "Sin categoría"
		if r.CategoryID != nil {
			if c, ok := f.categories[*r.CategoryID]; ok {
				name = c.Name
			}
		}
		counts[name]++
	}
	var out []domain.CategoryDemand
	for name, n := range counts {
		out = append(out, domain.CategoryDemand{CategoryName: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out, nil
}

func (f *fakeStore) TitleDemand(_ context.Context, kind domain.RequestKind, since time.Time, limit int) ([]domain.TitleDemand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, r := range f.itemReqs {
		if r.Kind != kind || r.CreatedAt.Before(since) {
			continue
		}
		counts[r.Title]++
	}
	var out []domain.TitleDemand
	for title, n := range counts {
		out = append(out, domain.TitleDemand{Title: title, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Title < out[j].Title
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestEnv(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	return New(Deps{Store: fs}), fs
}

func validTrip() CreateTripInput {
	return CreateTripInput{
		Destination: "Mercado Rodríguez",
		Departure:   time.Now().Add(2 * time.Hour),
		Return:      time.Now().Add(6 * time.Hour),
		Notes:       "salgo temprano",
	}
}

func TestCreateTripValidation(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	in := validTrip()
	in.Destination = "   "
	_, err := svc.CreateTrip(ctx, "shopper-1", in)
	require.ErrorIs(t, err, ErrMissingFields)

	in = validTrip()
	in.Return = in.Departure.Add(-time.Hour)
	_, err = svc.CreateTrip(ctx, "shopper-1", in)
	require.ErrorIs(t, err, ErrInvalidWindow)

	in = validTrip()
	in.Return = in.Departure
	_, err = svc.CreateTrip(ctx, "shopper-1", in)
	require.ErrorIs(t, err, ErrInvalidWindow)

	in = validTrip()
	in.Departure = time.Time{}
	_, err = svc.CreateTrip(ctx, "shopper-1", in)
	require.ErrorIs(t, err, ErrInvalidWindow)

	trip, err := svc.CreateTrip(ctx, "shopper-1", validTrip())
	require.NoError(t, err)
	require.NotEmpty(t, trip.ID)
	require.Equal(t, domain.TripAvailable, trip.Status)

	trips, total, err := svc.ListAvailable(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, trips, 1)
}

func TestAdvanceTrip(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, "shopper-1", validTrip())
	require.NoError(t, err)

	_, err = svc.AdvanceTrip(ctx, trip.ID, "otro", domain.TripInProgress)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AdvanceTrip(ctx, trip.ID, "shopper-1", domain.TripStatus("cancelled"))
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err := svc.AdvanceTrip(ctx, trip.ID, "shopper-1", domain.TripInProgress)
	require.NoError(t, err)
	require.Equal(t, domain.TripInProgress, got.Status)

	got, err = svc.AdvanceTrip(ctx, trip.ID, "shopper-1", domain.TripCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.TripCompleted, got.Status)

	// Los estados terminales quedan congelados.
	_, err = svc.AdvanceTrip(ctx, trip.ID, "shopper-1", domain.TripInProgress)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.AdvanceTrip(ctx, "trip-999", "shopper-1", domain.TripCompleted)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Un viaje disponible puede saltar directo a completado.
	skip, err := svc.CreateTrip(ctx, "shopper-1", validTrip())
	require.NoError(t, err)
	got, err = svc.AdvanceTrip(ctx, skip.ID, "shopper-1", domain.TripCompleted)
	require.NoError(t, err)
	require.Equal(t, domain.TripCompleted, got.Status)
}

func cents(v int64) *domain.Cents {
	c := domain.Cents(v)
	return &c
}

func validShoppingRequest(tripID string) ShoppingRequestInput {
	return ShoppingRequestInput{
		TripID:           tripID,
		ItemsRequested:   "2kg de quinua, 1 bolsa de chuño",
		DeliveryLocation: "Av. Busch esq. Villazón",
		ContactDetails:   "70000000",
		Notes:            "de la feria si se puede",
	}
}

func TestCreateShoppingRequestValidation(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, "shopper-1", validTrip())
	require.NoError(t, err)

	_, err = svc.CreateShoppingRequest(ctx, "shopper-1", validShoppingRequest(trip.ID))
	require.ErrorIs(t, err, ErrOwnTrip)

	in := validShoppingRequest(trip.ID)
	in.ItemsRequested = " "
	_, err = svc.CreateShoppingRequest(ctx, "user-1", in)
	require.ErrorIs(t, err, ErrMissingFields)

	in = validShoppingRequest(trip.ID)
	in.EstimatedTotalCents = cents(-100)
	_, err = svc.CreateShoppingRequest(ctx, "user-1", in)
	require.ErrorIs(t, err, ErrInvalidAmount)

	// La paga del shopper no puede ser menor al costo estimado.
	in = validShoppingRequest(trip.ID)
	in.EstimatedTotalCents = cents(10000)
	in.ShopperFeeCents = cents(9000)
	_, err = svc.CreateShoppingRequest(ctx, "user-1", in)
	require.ErrorIs(t, err, ErrFeeBelowCost)

	in = validShoppingRequest(trip.ID)
	in.EstimatedTotalCents = cents(10000)
	in.ShopperFeeCents = cents(12000)
	r, err := svc.CreateShoppingRequest(ctx, "user-1", in)
	require.NoError(t, err)
	require.Equal(t, domain.ShopReqPending, r.Status)
	require.Equal(t, "shopper-1", r.ShopperID)
	require.Equal(t, trip.ID, r.TripID)

	_, err = svc.CreateShoppingRequest(ctx, "user-1", validShoppingRequest("trip-999"))
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Un viaje en progreso ya no acepta encargos.
	_, err = svc.AdvanceTrip(ctx, trip.ID, "shopper-1", domain.TripInProgress)
	require.NoError(t, err)
	_, err = svc.CreateShoppingRequest(ctx, "user-1", validShoppingRequest(trip.ID))
	require.ErrorIs(t, err, ErrTripUnavailable)
}

func TestRespondToRequestFlow(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, "shopper-1", validTrip())
	require.NoError(t, err)
	r, err := svc.CreateShoppingRequest(ctx, "user-1", validShoppingRequest(trip.ID))
	require.NoError(t, err)

	_, err = svc.RespondToRequest(ctx, r.ID, "user-1", ActionAccept)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RespondToRequest(ctx, r.ID, "shopper-1", "maybe")
	require.ErrorIs(t, err, ErrInvalidAction)

	// Completar exige que el encargo esté aceptado.
	_, err = svc.RespondToRequest(ctx, r.ID, "shopper-1", ActionComplete)
	require.ErrorIs(t, err, ErrInvalidTransition)

	got, err := svc.RespondToRequest(ctx, r.ID, "shopper-1", ActionAccept)
	require.NoError(t, err)
	require.Equal(t, domain.ShopReqAccepted, got.Status)

	_, err = svc.RespondToRequest(ctx, r.ID, "shopper-1", ActionAccept)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Quien encargó también puede marcarlo como completado.
	got, err = svc.RespondToRequest(ctx, r.ID, "user-1", ActionComplete)
	require.NoError(t, err)
	require.Equal(t, domain.ShopReqCompleted, got.Status)

	// Un tercero no puede completar.
	r2, err := svc.CreateShoppingRequest(ctx, "user-2", validShoppingRequest(trip.ID))
	require.NoError(t, err)
	_, err = svc.RespondToRequest(ctx, r2.ID, "shopper-1", ActionAccept)
	require.NoError(t, err)
	_, err = svc.RespondToRequest(ctx, r2.ID, "user-1", ActionComplete)
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err = svc.RespondToRequest(ctx, r2.ID, "shopper-1", ActionReject)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.Nil(t, got)
}

func TestListShoppingRequestsByRole(t *testing.T) {
	svc, _ := newTestEnv(t)
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, "shopper-1", validTrip())
	require.NoError(t, err)
	_, err = svc.CreateShoppingRequest(ctx, "user-1", validShoppingRequest(trip.ID))
	require.NoError(t, err)
	_, err = svc.CreateShoppingRequest(ctx, "user-2", validShoppingRequest(trip.ID))
	require.NoError(t, err)

	made, total, err := svc.ListShoppingRequests(ctx, "user-1", "made", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, made, 1)

	received, total, err := svc.ListShoppingRequests(ctx, "shopper-1", "received", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, received, 2)

	// Sin rol explícito se listan los hechos.
	made, total, err = svc.ListShoppingRequests(ctx, "user-2", "", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, made, 1)

	_, _, err = svc.ListShoppingRequests(ctx, "user-1", "all", 10, 0)
	require.ErrorIs(t, err, ErrInvalidAction)
}

func TestItemRequestBoard(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	catID := fs.seedCategory("Alimentos")

	_, err := svc.CreateItemRequest(ctx, "user-1", ItemRequestInput{
		Kind: domain.RequestKind("other"), Title: "x", ContactInfo: "y",
	})
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.CreateItemRequest(ctx, "user-1", ItemRequestInput{
		Kind: domain.RequestKindProduct, Title: "  ", ContactInfo: "y",
	})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.CreateItemRequest(ctx, "user-1", ItemRequestInput{
		Kind: domain.RequestKindProduct, Title: "Miel de Apolo", ContactInfo: "70000000",
		CategoryID: "cat-999",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	first, err := svc.CreateItemRequest(ctx, "user-1", ItemRequestInput{
		Kind: domain.RequestKindProduct, Title: "Miel de Apolo", ContactInfo: "70000000",
		CategoryID: catID, BudgetCents: cents(5000),
	})
	require.NoError(t, err)
	require.NotNil(t, first.CategoryID)
	require.False(t, first.Fulfilled)

	second, err := svc.CreateItemRequest(ctx, "user-1", ItemRequestInput{
		Kind: domain.RequestKindProduct, Title: "Café de Caranavi", ContactInfo: "70000000",
	})
	require.NoError(t, err)
	require.Nil(t, second.CategoryID)

	_, err = svc.ToggleItemRequestFulfilled(ctx, first.ID, "otro", domain.RoleClient)
	require.ErrorIs(t, err, domain.ErrForbidden)

	toggled, err := svc.ToggleItemRequestFulfilled(ctx, first.ID, "user-1", domain.RoleClient)
	require.NoError(t, err)
	require.True(t, toggled.Fulfilled)

	// El tablero abierto oculta los cumplidos; lo propio los incluye.
	board, total, err := svc.ListItemRequests(ctx, "owner-1", ListItemRequestsOptions{
		Kind: domain.RequestKindProduct, Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, second.ID, board[0].ID)

	mine, total, err := svc.ListItemRequests(ctx, "user-1", ListItemRequestsOptions{
		Kind: domain.RequestKindProduct, Mine: true, Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, mine, 2)

	// Un admin puede destrabar el pedido de otro.
	toggled, err = svc.ToggleItemRequestFulfilled(ctx, first.ID, "admin-1", domain.RoleAdmin)
	require.NoError(t, err)
	require.False(t, toggled.Fulfilled)

	err = svc.DeleteItemRequest(ctx, second.ID, "otro", domain.RoleClient)
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.NoError(t, svc.DeleteItemRequest(ctx, second.ID, "user-1", domain.RoleClient))

	_, _, err = svc.ListItemRequests(ctx, "x", ListItemRequestsOptions{Kind: domain.RequestKind("bad")})
	require.ErrorIs(t, err, ErrInvalidKind)
}

func TestDemandReport(t *testing.T) {
	svc, fs := newTestEnv(t)
	ctx := context.Background()
	catID := fs.seedCategory("Alimentos")

	for i := 0; i < 2; i++ {
		_, err := svc.CreateItemRequest(ctx, fmt.Sprintf("user-%d", i), ItemRequestInput{
			Kind: domain.RequestKindProduct, Title: "Quinua real", ContactInfo: "700",
			CategoryID: catID,
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateItemRequest(ctx, "user-3", ItemRequestInput{
		Kind: domain.RequestKindProduct, Title: "Chuño", ContactInfo: "700",
	})
	require.NoError(t, err)
	_, err = svc.CreateItemRequest(ctx, "user-4", ItemRequestInput{
		Kind: domain.RequestKindService, Title: "Plomería", ContactInfo: "700",
	})
	require.NoError(t, err)

	// Un pedido viejo queda fuera de la ventana de 30 días.
	old, err := svc.CreateItemRequest(ctx, "user-5", ItemRequestInput{
		Kind: domain.RequestKindProduct, Title: "Singani", ContactInfo: "700",
	})
	require.NoError(t, err)
	fs.mu.Lock()
	fs.itemReqs[old.ID].CreatedAt = time.Now().Add(-40 * 24 * time.Hour)
	fs.mu.Unlock()

	report, err := svc.Demand(ctx)
	require.NoError(t, err)

	require.Len(t, report.ProductCategories, 2)
	require.Equal(t, "Alimentos", report.ProductCategories[0].CategoryName)
	require.Equal(t, 2, report.ProductCategories[0].Count)
	require.Equal(t, "Sin categoría", report.ProductCategories[1].CategoryName)

	require.Len(t, report.TopProducts, 2)
	require.Equal(t, "Quinua real", report.TopProducts[0].Title)
	require.Equal(t, 2, report.TopProducts[0].Count)

	require.Len(t, report.ServiceCategories, 1)
	require.Len(t, report.TopServices, 1)
	require.Equal(t, "Plomería", report.TopServices[0].Title)
}
