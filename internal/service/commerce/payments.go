package commerce

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Peekay0523/MadidiMarket/internal/domain"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/util/atomicwrite"
)

// CardInput son los datos del formulario de tarjeta. ExpiryDate viene
// como MM/YY.
type CardInput struct {
	Number     string
	HolderName string
	ExpiryDate string
	CVV        string
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// validateCard retorna los últimos cuatro dígitos si la tarjeta pasa las
// validaciones de formato. No se habla con ningún procesador real.
func validateCard(in CardInput, now time.Time) (string, error) {
	number := strings.ReplaceAll(in.Number, " ", "")
	if len(number) != 16 || !allDigits(number) {
		return "", fmt.Errorf("%w: card number must be 16 digits", ErrInvalidCard)
	}
	if strings.TrimSpace(in.HolderName) == "" {
		return "", fmt.Errorf("%w: holder name required", ErrInvalidCard)
	}

	mm, yy, ok := strings.Cut(strings.TrimSpace(in.ExpiryDate), "/")
	if !ok || len(yy) != 2 {
		return "", fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidCard)
	}
	month, err := strconv.Atoi(mm)
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidCard)
	}
	year, err := strconv.Atoi(yy)
	if err != nil {
		return "", fmt.Errorf("%w: expiry must be MM/YY", ErrInvalidCard)
	}
	// La tarjeta vale hasta el último instante de su mes.
	expiresAt := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(expiresAt) {
		return "", fmt.Errorf("%w: card expired", ErrInvalidCard)
	}

	if l := len(in.CVV); (l != 3 && l != 4) || !allDigits(in.CVV) {
		return "", fmt.Errorf("%w: cvv must be 3 or 4 digits", ErrInvalidCard)
	}
	return number[12:], nil
}

// capture relee el carrito, revalida stock y materializa las órdenes de
// un checkout pendiente. Cualquier rechazo descarta el registro
// pendiente para que el cliente rehaga el checkout con el carrito al
// día.
func (s *Service) capture(
	ctx context.Context,
	userID string,
	pending *pendingCheckout,
	buildPayment func() domain.Payment,
) ([]domain.Order, []domain.Payment, domain.CartTotals, error) {
	var zero domain.CartTotals

	cart, err := s.deps.Store.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, nil, zero, err
	}
	items, err := s.deps.Store.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, nil, zero, err
	}
	if len(items) == 0 {
		s.clearPending(ctx, userID)
		return nil, nil, zero, ErrEmptyCart
	}
	if err := validateStock(items); err != nil {
		s.clearPending(ctx, userID)
		return nil, nil, zero, err
	}

	delivery := deliveryInfo{
		Option:  pending.DeliveryOption,
		Address: pending.DeliveryAddress,
		Phone:   pending.DeliveryPhone,
		Notes:   pending.Notes,
	}
	orders, payments, err := s.placeOrders(ctx, userID, delivery, items, buildPayment)
	if err != nil {
		return nil, nil, zero, err
	}
	totals := domain.TotalsOf(items)

	if err := s.deps.Store.ClearCart(ctx, cart.ID); err != nil {
		logger.From(ctx).Warn("clear cart after capture failed",
			logger.Component("commerce.payments"),
			logger.UserID(userID),
			logger.Err(err),
		)
	}
	s.clearPending(ctx, userID)
	return orders, payments, totals, nil
}

// PayWithCard captura un checkout pendiente de tarjeta. El pago queda
// completado de inmediato guardando sólo los últimos cuatro dígitos.
func (s *Service) PayWithCard(ctx context.Context, userID string, in CardInput) (*CheckoutResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("commerce.payments"),
		logger.Op("PayWithCard"),
		logger.UserID(userID),
	)

	pending, err := s.loadPending(ctx, userID, domain.PayCreditCard)
	if err != nil {
		return nil, err
	}
	lastFour, err := validateCard(in, time.Now())
	if err != nil {
		log.Debug("card rejected", logger.Err(err))
		return nil, err
	}

	orders, _, totals, err := s.capture(ctx, userID, pending, func() domain.Payment {
		return domain.Payment{
			Method:       domain.PayCreditCard,
			Status:       domain.PaymentCompleted,
			CardLastFour: lastFour,
		}
	})
	if err != nil {
		return nil, err
	}

	log.Info("card payment captured",
		logger.Count(len(orders)),
		logger.Amount(int64(totals.TotalCents)),
	)
	return &CheckoutResult{
		State:         "placed",
		Orders:        orders,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
	}, nil
}

var proofExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// readProof valida extensión y tamaño del comprobante y lo lee entero.
func (s *Service) readProof(filename string, size int64, r io.Reader) (string, []byte, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !proofExtensions[ext] {
		return "", nil, ErrInvalidFileType
	}
	if size > s.deps.MaxProofBytes {
		return "", nil, ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(r, s.deps.MaxProofBytes+1))
	if err != nil {
		return "", nil, err
	}
	if int64(len(data)) > s.deps.MaxProofBytes {
		return "", nil, ErrFileTooLarge
	}
	return ext, data, nil
}

// PayWithBankTransfer captura un checkout pendiente de transferencia.
// Las órdenes nacen con su pago pendiente y el código de referencia
// generado en el checkout; el admin verifica contra el comprobante.
func (s *Service) PayWithBankTransfer(ctx context.Context, userID, proofName string, proofSize int64, proof io.Reader) (*CheckoutResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("commerce.payments"),
		logger.Op("PayWithBankTransfer"),
		logger.UserID(userID),
	)

	pending, err := s.loadPending(ctx, userID, domain.PayBankTransfer)
	if err != nil {
		return nil, err
	}
	ext, data, err := s.readProof(proofName, proofSize, proof)
	if err != nil {
		log.Debug("proof rejected", logger.Err(err))
		return nil, err
	}

	orders, payments, totals, err := s.capture(ctx, userID, pending, func() domain.Payment {
		return domain.Payment{
			Method:            domain.PayBankTransfer,
			Status:            domain.PaymentPending,
			BankReferenceCode: pending.BankReference,
		}
	})
	if err != nil {
		return nil, err
	}

	// Un mismo comprobante respalda todos los pagos del checkout; cada
	// pago guarda su propia copia. En DB va el path relativo al
	// directorio de uploads.
	for i := range payments {
		p := &payments[i]
		rel := filepath.Join("payments", p.ID+ext)
		if err := atomicwrite.Write(filepath.Join(s.deps.UploadsDir, rel), data, 0o644); err != nil {
			log.Error("write proof file failed", logger.PaymentID(p.ID), logger.Err(err))
			return nil, err
		}
		if err := s.deps.Store.SetPaymentProof(ctx, p.ID, rel); err != nil {
			log.Error("record proof path failed", logger.PaymentID(p.ID), logger.Err(err))
			return nil, err
		}
		p.ProofPath = rel
	}

	log.Info("bank transfer submitted",
		logger.Count(len(orders)),
		logger.Amount(int64(totals.TotalCents)),
		logger.String("reference", pending.BankReference),
	)
	return &CheckoutResult{
		State:         "placed",
		Orders:        orders,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Payment: &PaymentInstructions{
			Method:        domain.PayBankTransfer,
			ReferenceCode: pending.BankReference,
		},
	}, nil
}
