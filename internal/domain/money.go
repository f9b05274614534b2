package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents representa un monto en centavos de boliviano. Todo el cálculo de
// dinero se hace en enteros; los floats nunca tocan montos.
type Cents int64

// TaxRatePercent es el IVA aplicado sobre el subtotal en checkout.
const TaxRatePercent = 15

// TaxOn calcula el impuesto (15%) sobre un subtotal, redondeo half-up
// al centavo.
func TaxOn(subtotal Cents) Cents {
	if subtotal <= 0 {
		return 0
	}
	return Cents((int64(subtotal)*TaxRatePercent + 50) / 100)
}

// String formatea el monto como decimal con dos cifras ("1234.50").
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseCents convierte un string decimal ("12", "12.5", "12.50") a centavos.
// Más de dos decimales es inválido.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse cents: empty")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("parse cents: too many decimals in %q", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cents: %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cents: %q: %w", s, err)
	}
	v := w*100 + f
	if neg {
		v = -v
	}
	return Cents(v), nil
}
