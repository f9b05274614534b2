package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// pageSize es el tamaño fijo de página de todos los listados.
const pageSize = 10

// pageParams lee ?page=N (mínimo 1) y lo convierte a limit/offset.
func pageParams(r *http.Request) (page, limit, offset int) {
	page = 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return page, pageSize, (page - 1) * pageSize
}

// listEnvelope es la respuesta estándar de los listados paginados.
type listEnvelope struct {
	Items      any `json:"items"`
	Page       int `json:"page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func newListEnvelope(items any, page, total int) listEnvelope {
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return listEnvelope{Items: items, Page: page, Total: total, TotalPages: pages}
}

// limitParam lee ?limit=N acotado a [1, max]; 0 deja que el servicio
// aplique su default.
func limitParam(r *http.Request, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// dateParam parsea fechas YYYY-MM-DD o RFC3339; nil si está vacío o
// malformado.
func dateParam(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
