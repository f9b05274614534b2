package domain

import (
	"regexp"
	"time"
)

// PaymentMethod es el medio de pago elegido en checkout.
type PaymentMethod string

const (
	PayCreditCard     PaymentMethod = "credit_card"
	PayBankTransfer   PaymentMethod = "bank_transfer"
	PayCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid retorna true para un medio de pago conocido.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PayCreditCard, PayBankTransfer, PayCashOnDelivery:
		return true
	}
	return false
}

// PaymentStatus es el estado de un pago.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

// Payment registra el pago de una orden; una orden tiene a lo sumo un pago.
type Payment struct {
	ID                string
	OrderID           string
	Method            PaymentMethod
	Status            PaymentStatus
	AmountCents       Cents // total de la orden, impuesto incluido
	CardLastFour      string
	BankReferenceCode string
	ProofPath         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

var bankRefRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// IsValidBankReference valida el código de referencia de transferencia
// (10 caracteres A-Z/0-9).
func IsValidBankReference(code string) bool {
	return bankRefRe.MatchString(code)
}
