package util

import "strings"

// MaskEmail reduce un email a algo logueable sin exponer la dirección
// completa: primera letra del usuario y del dominio, resto elidido.
// "dona.rosa@madidimarket.com" queda como "d…@m….com".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	at := strings.IndexByte(s, '@')
	if at <= 0 {
		// Sin @ (o vacío antes del @): no es un email bien formado,
		// igual lo elidimos por si llegó algo sensible.
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}

	local, dom := s[:at], s[at+1:]
	if len(local) > 1 {
		local = local[:1] + "…"
	}
	if dot := strings.IndexByte(dom, '.'); dot > 1 {
		dom = dom[:1] + "…" + dom[dot:]
	} else if dot < 0 && len(dom) > 1 {
		dom = dom[:1] + "…"
	}
	return local + "@" + dom
}
