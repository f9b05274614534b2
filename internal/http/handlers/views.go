package handlers

import (
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/service/commerce"
	"github.com/Peekay0523/MadidiMarket/internal/service/errands"
	"github.com/Peekay0523/MadidiMarket/internal/service/reviews"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
)

// Las vistas separan el dominio del JSON del API: los tipos de dominio
// no llevan tags y acá se decide qué campos salen al cliente.

type userView struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Approved      bool      `json:"approved"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func renderUser(u *domain.User) userView {
	return userView{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          string(u.Role),
		Phone:         u.Phone,
		Address:       u.Address,
		Approved:      u.Approved,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

type tokensView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type businessView struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func renderBusiness(b *domain.Business) businessView {
	return businessView{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
		LogoURL:     b.LogoURL,
		CreatedAt:   b.CreatedAt,
	}
}

func renderBusinesses(bs []domain.Business) []businessView {
	out := make([]businessView, 0, len(bs))
	for i := range bs {
		out = append(out, renderBusiness(&bs[i]))
	}
	return out
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	ProductCount *int `json:"product_count,omitempty"`
	ServiceCount *int `json:"service_count,omitempty"`
}

func renderCategory(c *domain.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Description: c.Description}
}

func renderCategories(cs []domain.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for i := range cs {
		out = append(out, renderCategory(&cs[i]))
	}
	return out
}

func renderCategoryCounts(cs []domain.CategoryCount) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for i := range cs {
		v := renderCategory(&cs[i].Category)
		pc, sc := cs[i].ProductCount, cs[i].ServiceCount
		v.ProductCount = &pc
		v.ServiceCount = &sc
		out = append(out, v)
	}
	return out
}

type productView struct {
	ID            string       `json:"id"`
	BusinessID    string       `json:"business_id"`
	CategoryID    *string      `json:"category_id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	PriceCents    domain.Cents `json:"price_cents"`
	StockQuantity int          `json:"stock_quantity"`
	ImageURL      string       `json:"image_url,omitempty"`
	Available     bool         `json:"available"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func renderProduct(p *domain.Product) productView {
	return productView{
		ID:            p.ID,
		BusinessID:    p.BusinessID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		Description:   p.Description,
		PriceCents:    p.PriceCents,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Available:     p.Available,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func renderProducts(ps []domain.Product) []productView {
	out := make([]productView, 0, len(ps))
	for i := range ps {
		out = append(out, renderProduct(&ps[i]))
	}
	return out
}

type serviceView struct {
	ID          string        `json:"id"`
	BusinessID  string        `json:"business_id"`
	CategoryID  *string       `json:"category_id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	PriceCents  *domain.Cents `json:"price_cents"`
	Duration    string        `json:"duration,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
	Available   bool          `json:"available"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func renderService(s *domain.Service) serviceView {
	return serviceView{
		ID:          s.ID,
		BusinessID:  s.BusinessID,
		CategoryID:  s.CategoryID,
		Name:        s.Name,
		Description: s.Description,
		PriceCents:  s.PriceCents,
		Duration:    s.Duration,
		ImageURL:    s.ImageURL,
		Available:   s.Available,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func renderServices(ss []domain.Service) []serviceView {
	out := make([]serviceView, 0, len(ss))
	for i := range ss {
		out = append(out, renderService(&ss[i]))
	}
	return out
}

type cartItemView struct {
	ProductID      string       `json:"product_id"`
	ProductName    string       `json:"product_name"`
	BusinessID     string       `json:"business_id"`
	BusinessName   string       `json:"business_name"`
	Quantity       int          `json:"quantity"`
	PriceCents     domain.Cents `json:"price_cents"`
	LineTotalCents domain.Cents `json:"line_total_cents"`
	Available      bool         `json:"available"`
	StockQuantity  int          `json:"stock_quantity"`
}

type cartView struct {
	Items         []cartItemView `json:"items"`
	ItemCount     int            `json:"item_count"`
	SubtotalCents domain.Cents   `json:"subtotal_cents"`
	TaxCents      domain.Cents   `json:"tax_cents"`
	TotalCents    domain.Cents   `json:"total_cents"`
}

func renderCart(v *commerce.CartView) cartView {
	items := make([]cartItemView, 0, len(v.Items))
	for i := range v.Items {
		it := &v.Items[i]
		items = append(items, cartItemView{
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			BusinessID:     it.BusinessID,
			BusinessName:   it.BusinessName,
			Quantity:       it.Quantity,
			PriceCents:     it.PriceCents,
			LineTotalCents: it.LineTotal(),
			Available:      it.Available,
			StockQuantity:  it.StockQuantity,
		})
	}
	return cartView{
		Items:         items,
		ItemCount:     v.Totals.ItemCount,
		SubtotalCents: v.Totals.SubtotalCents,
		TaxCents:      v.Totals.TaxCents,
		TotalCents:    v.Totals.TotalCents,
	}
}

type orderView struct {
	ID              string       `json:"id"`
	CustomerID      string       `json:"customer_id"`
	BusinessID      string       `json:"business_id"`
	BusinessName    string       `json:"business_name,omitempty"`
	CustomerEmail   string       `json:"customer_email,omitempty"`
	Status          string       `json:"status"`
	SubtotalCents   domain.Cents `json:"subtotal_cents"`
	TaxCents        domain.Cents `json:"tax_cents"`
	TotalCents      domain.Cents `json:"total_cents"`
	DeliveryOption  string       `json:"delivery_option"`
	DeliveryAddress string       `json:"delivery_address,omitempty"`
	DeliveryPhone   string       `json:"delivery_phone,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func renderOrder(o *domain.Order) orderView {
	return orderView{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		BusinessID:      o.BusinessID,
		BusinessName:    o.BusinessName,
		CustomerEmail:   o.CustomerEmail,
		Status:          string(o.Status),
		SubtotalCents:   o.SubtotalCents,
		TaxCents:        o.TaxCents(),
		TotalCents:      o.TotalCents(),
		DeliveryOption:  string(o.DeliveryOption),
		DeliveryAddress: o.DeliveryAddress,
		DeliveryPhone:   o.DeliveryPhone,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func renderOrders(os []domain.Order) []orderView {
	out := make([]orderView, 0, len(os))
	for i := range os {
		out = append(out, renderOrder(&os[i]))
	}
	return out
}

type orderItemView struct {
	ID             string       `json:"id"`
	ProductID      *string      `json:"product_id"`
	ProductName    string       `json:"product_name"`
	Quantity       int          `json:"quantity"`
	PriceCents     domain.Cents `json:"price_cents"`
	LineTotalCents domain.Cents `json:"line_total_cents"`
}

type paymentView struct {
	ID                string       `json:"id"`
	OrderID           string       `json:"order_id"`
	Method            string       `json:"method"`
	Status            string       `json:"status"`
	AmountCents       domain.Cents `json:"amount_cents"`
	CardLastFour      string       `json:"card_last_four,omitempty"`
	BankReferenceCode string       `json:"bank_reference_code,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func renderPayment(p *domain.Payment) paymentView {
	return paymentView{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Method:            string(p.Method),
		Status:            string(p.Status),
		AmountCents:       p.AmountCents,
		CardLastFour:      p.CardLastFour,
		BankReferenceCode: p.BankReferenceCode,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func renderPayments(ps []domain.Payment) []paymentView {
	out := make([]paymentView, 0, len(ps))
	for i := range ps {
		out = append(out, renderPayment(&ps[i]))
	}
	return out
}

type orderDetailView struct {
	orderView
	Items   []orderItemView `json:"items"`
	Payment *paymentView    `json:"payment,omitempty"`
}

func renderOrderDetail(d *commerce.OrderDetail) orderDetailView {
	items := make([]orderItemView, 0, len(d.Items))
	for i := range d.Items {
		it := &d.Items[i]
		items = append(items, orderItemView{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			PriceCents:     it.PriceCents,
			LineTotalCents: it.LineTotal(),
		})
	}
	v := orderDetailView{orderView: renderOrder(&d.Order), Items: items}
	if d.Payment != nil {
		pv := renderPayment(d.Payment)
		v.Payment = &pv
	}
	return v
}

type paymentInstructionsView struct {
	Method        string `json:"method"`
	ReferenceCode string `json:"reference_code,omitempty"`
	Beneficiary   string `json:"beneficiary,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
}

type checkoutView struct {
	State         string                   `json:"state"`
	Orders        []orderView              `json:"orders,omitempty"`
	SubtotalCents domain.Cents             `json:"subtotal_cents"`
	TaxCents      domain.Cents             `json:"tax_cents"`
	AmountCents   domain.Cents             `json:"amount_cents"`
	Payment       *paymentInstructionsView `json:"payment,omitempty"`
}

func renderCheckout(res *commerce.CheckoutResult) checkoutView {
	v := checkoutView{
		State:         res.State,
		SubtotalCents: res.SubtotalCents,
		TaxCents:      res.TaxCents,
		AmountCents:   res.TotalCents,
	}
	if len(res.Orders) > 0 {
		v.Orders = renderOrders(res.Orders)
	}
	if res.Payment != nil {
		v.Payment = &paymentInstructionsView{
			Method:        string(res.Payment.Method),
			ReferenceCode: res.Payment.ReferenceCode,
			Beneficiary:   res.Payment.Beneficiary,
			BankName:      res.Payment.BankName,
			AccountNumber: res.Payment.AccountNumber,
		}
	}
	return v
}

type reviewView struct {
	ID           string    `json:"id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	BusinessID   *string   `json:"business_id,omitempty"`
	ProductID    *string   `json:"product_id,omitempty"`
	ServiceID    *string   `json:"service_id,omitempty"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	Likes        int       `json:"likes"`
	Dislikes     int       `json:"dislikes"`
	UserVote     *string   `json:"user_vote,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func renderReview(rv *domain.Review) reviewView {
	v := reviewView{
		ID:           rv.ID,
		ReviewerID:   rv.ReviewerID,
		ReviewerName: rv.ReviewerName,
		BusinessID:   rv.BusinessID,
		ProductID:    rv.ProductID,
		ServiceID:    rv.ServiceID,
		Rating:       rv.Rating,
		Comment:      rv.Comment,
		Likes:        rv.Likes,
		Dislikes:     rv.Dislikes,
		CreatedAt:    rv.CreatedAt,
	}
	if rv.CallerVote != nil {
		vote := "dislike"
		if *rv.CallerVote {
			vote = "like"
		}
		v.UserVote = &vote
	}
	return v
}

func renderReviews(rs []domain.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for i := range rs {
		out = append(out, renderReview(&rs[i]))
	}
	return out
}

type ratingSummaryView struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

func renderSummary(s reviews.RatingSummary) ratingSummaryView {
	return ratingSummaryView{Average: s.Average, Count: s.Count}
}

type tripView struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	ShopperName          string    `json:"shopper_name,omitempty"`
	Destination          string    `json:"destination"`
	PlannedDepartureTime time.Time `json:"planned_departure_time"`
	EstimatedReturnTime  time.Time `json:"estimated_return_time"`
	Status               string    `json:"status"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func renderTrip(t *domain.ShoppingTrip) tripView {
	return tripView{
		ID:                   t.ID,
		UserID:               t.UserID,
		ShopperName:          t.ShopperName,
		Destination:          t.Destination,
		PlannedDepartureTime: t.PlannedDepartureTime,
		EstimatedReturnTime:  t.EstimatedReturnTime,
		Status:               string(t.Status),
		Notes:                t.Notes,
		CreatedAt:            t.CreatedAt,
	}
}

func renderTrips(ts []domain.ShoppingTrip) []tripView {
	out := make([]tripView, 0, len(ts))
	for i := range ts {
		out = append(out, renderTrip(&ts[i]))
	}
	return out
}

type shoppingRequestView struct {
	ID                  string        `json:"id"`
	RequesterID         string        `json:"requester_id"`
	ShopperID           string        `json:"shopper_id"`
	TripID              string        `json:"trip_id"`
	ItemsRequested      string        `json:"items_requested"`
	EstimatedTotalCents *domain.Cents `json:"estimated_total_cents,omitempty"`
	ShopperFeeCents     *domain.Cents `json:"shopper_fee_cents,omitempty"`
	DeliveryLocation    string        `json:"delivery_location,omitempty"`
	ContactDetails      string        `json:"contact_details,omitempty"`
	Status              string        `json:"status"`
	Notes               string        `json:"notes,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
}

func renderShoppingRequest(r *domain.ShoppingRequest) shoppingRequestView {
	return shoppingRequestView{
		ID:                  r.ID,
		RequesterID:         r.RequesterID,
		ShopperID:           r.ShopperID,
		TripID:              r.TripID,
		ItemsRequested:      r.ItemsRequested,
		EstimatedTotalCents: r.EstimatedTotalCents,
		ShopperFeeCents:     r.ShopperFeeCents,
		DeliveryLocation:    r.DeliveryLocation,
		ContactDetails:      r.ContactDetails,
		Status:              string(r.Status),
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
	}
}

func renderShoppingRequests(rs []domain.ShoppingRequest) []shoppingRequestView {
	out := make([]shoppingRequestView, 0, len(rs))
	for i := range rs {
		out = append(out, renderShoppingRequest(&rs[i]))
	}
	return out
}

type itemRequestView struct {
	ID          string        `json:"id"`
	Kind        string        `json:"kind"`
	RequesterID string        `json:"requester_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	CategoryID  *string       `json:"category_id,omitempty"`
	BudgetCents *domain.Cents `json:"budget_cents,omitempty"`
	ContactInfo string        `json:"contact_info,omitempty"`
	Fulfilled   bool          `json:"fulfilled"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func renderItemRequest(r *domain.ItemRequest) itemRequestView {
	return itemRequestView{
		ID:          r.ID,
		Kind:        string(r.Kind),
		RequesterID: r.RequesterID,
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		BudgetCents: r.BudgetCents,
		ContactInfo: r.ContactInfo,
		Fulfilled:   r.Fulfilled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func renderItemRequests(rs []domain.ItemRequest) []itemRequestView {
	out := make([]itemRequestView, 0, len(rs))
	for i := range rs {
		out = append(out, renderItemRequest(&rs[i]))
	}
	return out
}

type demandEntryView struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type demandReportView struct {
	ProductCategories []demandEntryView `json:"product_categories"`
	ServiceCategories []demandEntryView `json:"service_categories"`
	TopProducts       []demandEntryView `json:"top_products"`
	TopServices       []demandEntryView `json:"top_services"`
}

func renderDemand(rep *errands.DemandReport) demandReportView {
	cat := func(in []domain.CategoryDemand) []demandEntryView {
		out := make([]demandEntryView, 0, len(in))
		for _, d := range in {
			out = append(out, demandEntryView{Name: d.CategoryName, Count: d.Count})
		}
		return out
	}
	title := func(in []domain.TitleDemand) []demandEntryView {
		out := make([]demandEntryView, 0, len(in))
		for _, d := range in {
			out = append(out, demandEntryView{Name: d.Title, Count: d.Count})
		}
		return out
	}
	return demandReportView{
		ProductCategories: cat(rep.ProductCategories),
		ServiceCategories: cat(rep.ServiceCategories),
		TopProducts:       title(rep.TopProducts),
		TopServices:       title(rep.TopServices),
	}
}

type pendingOwnerView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	BusinessName string    `json:"business_name,omitempty"`
	RequestedAt  time.Time `json:"requested_at"`
}

func renderPendingOwners(ps []pg.PendingOwner) []pendingOwnerView {
	out := make([]pendingOwnerView, 0, len(ps))
	for i := range ps {
		p := &ps[i]
		out = append(out, pendingOwnerView{
			ID:           p.User.ID,
			Email:        p.User.Email,
			FullName:     p.User.FullName,
			BusinessName: p.BusinessName,
			RequestedAt:  p.User.CreatedAt,
		})
	}
	return out
}

func renderUsers(us []domain.User) []userView {
	out := make([]userView, 0, len(us))
	for i := range us {
		out = append(out, renderUser(&us[i]))
	}
	return out
}
