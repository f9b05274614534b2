package admin

import (
	"context"
	"fmt"
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
	users      map[string]*domain.User
	userIDs    []string
	businesses map[string]*domain.Business // por dueño
	orders     map[string]*domain.Order
	orderIDs   []string
	payments   map[string]*domain.Payment
	paymentIDs []string
	sessions   map[string]int // refresh tokens activos por usuario

	products int
	services int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*domain.User{},
		businesses: map[string]*domain.Business{},
		orders:     map[string]*domain.Order{},
		payments:   map[string]*domain.Payment{},
		sessions:   map[string]int{},
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) seedUser(email string, role domain.Role, approved bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("user")
	f.users[id] = &domain.User{
		ID: id, Email: email, FullName: "Usuario " + id,
		Role: role, Approved: approved, CreatedAt: time.Now(),
	}
	f.userIDs = append(f.userIDs, id)
	return id
}

func (f *fakeStore) seedBusiness(ownerID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("biz")
	f.businesses[ownerID] = &domain.Business{ID: id, OwnerID: ownerID, Name: name}
	return id
}

func (f *fakeStore) seedOrder(status domain.OrderStatus) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("order")
	f.orders[id] = &domain.Order{ID: id, Status: status}
	f.orderIDs = append(f.orderIDs, id)
	return id
}

func (f *fakeStore) seedPayment(orderID string, method domain.PaymentMethod, status domain.PaymentStatus, amount domain.Cents) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID("pay")
	f.payments[id] = &domain.Payment{
		ID: id, OrderID: orderID, Method: method, Status: status, AmountCents: amount,
	}
	f.paymentIDs = append(f.paymentIDs, id)
	return id
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) ListUsers(_ context.Context, flt pg.UserFilter) ([]domain.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.User
	for i := len(f.userIDs) - 1; i >= 0; i-- {
		u := f.users[f.userIDs[i]]
		if flt.Role != "" && string(u.Role) != flt.Role {
			continue
		}
		if flt.Approved != nil && u.Approved != *flt.Approved {
			continue
		}
		all = append(all, *u)
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

func (f *fakeStore) ListPendingOwners(_ context.Context) ([]pg.PendingOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []pg.PendingOwner
	for _, id := range f.userIDs {
		u := f.users[id]
		if u.Role != domain.RoleBusinessOwner || u.Approved {
			continue
		}
		p := pg.PendingOwner{User: *u}
		if b, ok := f.businesses[id]; ok {
			p.BusinessName = b.Name
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ApproveUser(_ context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.Role != domain.RoleBusinessOwner || u.Approved {
		return nil, domain.ErrNotFound
	}
	u.Approved = true
	out := *u
	return &out, nil
}

func (f *fakeStore) SetUserDisabled(_ context.Context, userID string, disabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		if disabled {
			return nil
		}
		return domain.ErrNotFound
	}
	u.Disabled = disabled
	return nil
}

func (f *fakeStore) RevokeAllRefreshForUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.sessions[userID]
	f.sessions[userID] = 0
	return n, nil
}

func (f *fakeStore) GetBusinessByOwner(_ context.Context, ownerID string) (*domain.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.businesses[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (f *fakeStore) ListAllBusinesses(_ context.Context, limit, offset int) ([]domain.Business, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Business
	for _, b := range f.businesses {
		all = append(all, *b)
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

func (f *fakeStore) AdminListOrders(_ context.Context, flt pg.OrderFilter) ([]domain.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Order
	for i := len(f.orderIDs) - 1; i >= 0; i-- {
		o := f.orders[f.orderIDs[i]]
		if flt.Status != "" && string(o.Status) != flt.Status {
			continue
		}
		all = append(all, *o)
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

func (f *fakeStore) AdminListPayments(_ context.Context, flt pg.PaymentFilter) ([]domain.Payment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Payment
	for i := len(f.paymentIDs) - 1; i >= 0; i-- {
		p := f.payments[f.paymentIDs[i]]
		if flt.Status != "" && string(p.Status) != flt.Status {
			continue
		}
		if flt.Method != "" && string(p.Method) != flt.Method {
			continue
		}
		all = append(all, *p)
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

func (f *fakeStore) VerifyPayment(_ context.Context, paymentID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Status != domain.PaymentPending {
		return nil, domain.ErrConflict
	}
	p.Status = domain.PaymentCompleted
	if o, ok := f.orders[p.OrderID]; ok && o.Status == domain.OrderPending {
		o.Status = domain.OrderConfirmed
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) CountUsersByRole(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, u := range f.users {
		out[string(u.Role)]++
	}
	return out, nil
}

func (f *fakeStore) CountBusinesses(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.businesses), nil
}

func (f *fakeStore) CountProducts(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, nil
}

func (f *fakeStore) CountServices(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.services, nil
}

func (f *fakeStore) CountOrdersByStatus(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, o := range f.orders {
		out[string(o.Status)]++
	}
	return out, nil
}

func (f *fakeStore) CountPendingBankTransfers(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.payments {
		if p.Method == domain.PayBankTransfer && p.Status == domain.PaymentPending {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) RevenueCents(_ context.Context) (domain.Cents, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum domain.Cents
	for _, p := range f.payments {
		if p.Status == domain.PaymentCompleted {
			sum += p.AmountCents
		}
	}
	return sum, nil
}

type approvalMail struct {
	to       string
	business string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []approvalMail
}

func (m *fakeMailer) SendBusinessApproved(_ context.Context, toEmail, businessName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, approvalMail{to: toEmail, business: businessName})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() approvalMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

func newTestEnv(t *testing.T) (*Service, *fakeStore, *fakeMailer) {
	t.Helper()
	fs := newFakeStore()
	fm := &fakeMailer{}
	return New(Deps{Store: fs, Mailer: fm}), fs, fm
}

func TestApproveBusinessOwnerFlow(t *testing.T) {
	svc, fs, fm := newTestEnv(t)
	ctx := context.Background()

	ownerID := fs.seedUser("dueno@example.com", domain.RoleBusinessOwner, false)
	fs.seedBusiness(ownerID, "Tienda Doña Rosa")
	clientID := fs.seedUser("cliente@example.com", domain.RoleClient, false)

	u, err := svc.ApproveBusinessOwner(ctx, "admin-1", ownerID, true)
	require.NoError(t, err)
	require.True(t, u.Approved)

	require.Eventually(t, func() bool { return fm.count() == 1 },
		2*time.Second, 10*time.Millisecond)
	require.Equal(t, "dueno@example.com", fm.last().to)
	require.Equal(t, "Tienda Doña Rosa", fm.last().business)

	// Ya aprobado: no vuelve a aparecer como pendiente.
	_, err = svc.ApproveBusinessOwner(ctx, "admin-1", ownerID, true)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Los clientes no pasan por aprobación.
	_, err = svc.ApproveBusinessOwner(ctx, "admin-1", clientID, true)
	require.ErrorIs(t, err, domain.ErrNotFound)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, fm.count())
}

func TestApproveWithoutNotify(t *testing.T) {
	svc, fs, fm := newTestEnv(t)
	ctx := context.Background()

	ownerID := fs.seedUser("sinmail@example.com", domain.RoleBusinessOwner, false)
	_, err := svc.ApproveBusinessOwner(ctx, "admin-1", ownerID, false)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, fm.count())
}

func TestApproveWithNilMailer(t *testing.T) {
	fs := newFakeStore()
	svc := New(Deps{Store: fs})
	ctx := context.Background()

	ownerID := fs.seedUser("cli@example.com", domain.RoleBusinessOwner, false)
	u, err := svc.ApproveBusinessOwner(ctx, "admin-1", ownerID, true)
	require.NoError(t, err)
	require.True(t, u.Approved)
}

func TestSetUserDisabled(t *testing.T) {
	svc, fs, _ := newTestEnv(t)
	ctx := context.Background()

	userID := fs.seedUser("cliente@example.com", domain.RoleClient, false)
	fs.mu.Lock()
	fs.sessions[userID] = 3
	fs.mu.Unlock()

	require.NoError(t, svc.SetUserDisabled(ctx, "admin-1", userID, true))

	u, err := fs.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.True(t, u.Disabled)
	fs.mu.Lock()
	require.Zero(t, fs.sessions[userID])
	fs.mu.Unlock()

	require.NoError(t, svc.SetUserDisabled(ctx, "admin-1", userID, false))
	u, err = fs.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.False(t, u.Disabled)

	err = svc.SetUserDisabled(ctx, "admin-1", "user-999", true)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerifyPayment(t *testing.T) {
	svc, fs, _ := newTestEnv(t)
	ctx := context.Background()

	orderID := fs.seedOrder(domain.OrderPending)
	payID := fs.seedPayment(orderID, domain.PayBankTransfer, domain.PaymentPending, 11500)

	p, err := svc.VerifyPayment(ctx, "admin-1", payID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCompleted, p.Status)

	// La orden pendiente se confirma junto con el pago.
	fs.mu.Lock()
	require.Equal(t, domain.OrderConfirmed, fs.orders[orderID].Status)
	fs.mu.Unlock()

	_, err = svc.VerifyPayment(ctx, "admin-1", payID)
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.VerifyPayment(ctx, "admin-1", "pay-999")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminListings(t *testing.T) {
	svc, fs, _ := newTestEnv(t)
	ctx := context.Background()

	o1 := fs.seedOrder(domain.OrderPending)
	o2 := fs.seedOrder(domain.OrderCompleted)
	fs.seedPayment(o1, domain.PayBankTransfer, domain.PaymentPending, 5000)
	fs.seedPayment(o2, domain.PayCreditCard, domain.PaymentCompleted, 7000)

	orders, total, err := svc.ListOrders(ctx, "pending", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, o1, orders[0].ID)

	_, total, err = svc.ListOrders(ctx, "", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)

	// Cola de verificación: transferencias pendientes.
	pays, total, err := svc.ListPayments(ctx, "pending", "bank_transfer", 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, domain.PayBankTransfer, pays[0].Method)

	ownerID := fs.seedUser("dueno@example.com", domain.RoleBusinessOwner, false)
	fs.seedUser("cliente@example.com", domain.RoleClient, false)
	fs.seedBusiness(ownerID, "Artesanías Warmi")

	approved := false
	users, total, err := svc.ListUsers(ctx, "business_owner", &approved, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, ownerID, users[0].ID)

	pending, err := svc.ListPendingOwners(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "Artesanías Warmi", pending[0].BusinessName)

	bizs, total, err := svc.ListBusinesses(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, bizs, 1)
}

func TestStats(t *testing.T) {
	svc, fs, _ := newTestEnv(t)
	ctx := context.Background()

	fs.seedUser("c1@example.com", domain.RoleClient, false)
	fs.seedUser("c2@example.com", domain.RoleClient, false)
	ownerID := fs.seedUser("d@example.com", domain.RoleBusinessOwner, true)
	fs.seedUser("a@example.com", domain.RoleAdmin, true)
	fs.seedBusiness(ownerID, "Tienda")

	fs.mu.Lock()
	fs.products = 12
	fs.services = 4
	fs.mu.Unlock()

	o1 := fs.seedOrder(domain.OrderPending)
	o2 := fs.seedOrder(domain.OrderCompleted)
	fs.seedPayment(o1, domain.PayBankTransfer, domain.PaymentPending, 3000)
	fs.seedPayment(o2, domain.PayCreditCard, domain.PaymentCompleted, 11500)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.UsersByRole["client"])
	require.Equal(t, 1, stats.UsersByRole["business_owner"])
	require.Equal(t, 1, stats.UsersByRole["admin"])
	require.Equal(t, 1, stats.Businesses)
	require.Equal(t, 12, stats.Products)
	require.Equal(t, 4, stats.Services)
	require.Equal(t, 1, stats.OrdersByStatus["pending"])
	require.Equal(t, 1, stats.OrdersByStatus["completed"])
	require.Equal(t, 1, stats.PendingBankTransfers)
	require.Equal(t, domain.Cents(11500), stats.RevenueCents)
}
