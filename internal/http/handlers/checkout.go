package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
	"github.com/Peekay0523/MadidiMarket/internal/service/commerce"
)

// CheckoutService cubre el checkout en dos fases y las capturas de pago.
type CheckoutService interface {
	StartCheckout(ctx context.Context, userID string, in commerce.CheckoutInput) (*commerce.CheckoutResult, error)
	PayWithCard(ctx context.Context, userID string, in commerce.CardInput) (*commerce.CheckoutResult, error)
	PayWithBankTransfer(ctx context.Context, userID, proofName string, proofSize int64, proof io.Reader) (*commerce.CheckoutResult, error)
}

type CheckoutHandler struct {
	Svc     CheckoutService
	Limiter rate.MultiLimiter

	CheckoutBudget httpx.RateConfig

	// MaxProofBytes acota el body del multipart de transferencia.
	MaxProofBytes int64
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
	r.Post("/payments/card", h.payCard)
	r.Post("/payments/bank-transfer", h.payBankTransfer)
}

type checkoutIn struct {
	PaymentMethod  string `json:"payment_method"`
	DeliveryOption string `json:"delivery_option"`
	StreetAddress  string `json:"street_address"`
	City           string `json:"city"`
	PostalCode     string `json:"postal_code"`
	Phone          string `json:"phone"`
	Notes          string `json:"notes"`
}

// checkout valida el carrito y, según el método, crea las órdenes
// (efectivo) o deja el checkout pendiente de captura (tarjeta y
// transferencia).
func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var in checkoutIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}
	userID := httpx.UserIDFrom(r.Context())
	if !httpx.EnforceCheckoutLimit(w, r, h.Limiter, h.CheckoutBudget, userID) {
		return
	}

	res, err := h.Svc.StartCheckout(r.Context(), userID, commerce.CheckoutInput{
		PaymentMethod:  domain.PaymentMethod(in.PaymentMethod),
		DeliveryOption: domain.DeliveryOption(in.DeliveryOption),
		StreetAddress:  in.StreetAddress,
		City:           in.City,
		PostalCode:     in.PostalCode,
		Phone:          in.Phone,
		Notes:          in.Notes,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCheckout(res))
}

type cardIn struct {
	CardNumber     string `json:"card_number"`
	CardHolderName string `json:"card_holder_name"`
	ExpiryDate     string `json:"expiry_date"`
	CVV            string `json:"cvv"`
}

func (h *CheckoutHandler) payCard(w http.ResponseWriter, r *http.Request) {
	var in cardIn
	if !httpx.ReadJSON(w, r, &in) {
		return
	}

	res, err := h.Svc.PayWithCard(r.Context(), httpx.UserIDFrom(r.Context()), commerce.CardInput{
		Number:     in.CardNumber,
		HolderName: in.CardHolderName,
		ExpiryDate: in.ExpiryDate,
		CVV:        in.CVV,
	})
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCheckout(res))
}

// payBankTransfer recibe el comprobante como multipart. El límite del
// body deja margen para los headers del form además del archivo.
func (h *CheckoutHandler) payBankTransfer(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.MaxProofBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<18))

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "file_too_large", "el comprobante no puede superar el límite", 1309)
		return
	}
	file, header, err := r.FormFile("proof_of_payment")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "falta el archivo proof_of_payment", 1100)
		return
	}
	defer file.Close()

	res, err := h.Svc.PayWithBankTransfer(r.Context(), httpx.UserIDFrom(r.Context()), header.Filename, header.Size, file)
	if err != nil {
		WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, renderCheckout(res))
}
