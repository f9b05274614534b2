package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de negocio del marketplace. Viven en un package propio para
// evitar ciclos de import entre los services y el package HTTP.

var (
	OrdersCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "madidi_orders_created_total",
		Help: "Órdenes creadas por método de pago",
	}, []string{"payment_method"})

	OrderStatusChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "madidi_order_status_changes_total",
		Help: "Transiciones de estado de órdenes",
	}, []string{"action"})

	PaymentsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "madidi_payments_total",
		Help: "Pagos procesados por método y estado",
	}, []string{"method", "status"})

	EmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "madidi_emails_sent_total",
		Help: "Emails enviados por template y resultado",
	}, []string{"template", "result"})

	ReviewVotes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "madidi_review_votes_total",
		Help: "Votos de reseñas por resultado del toggle",
	}, []string{"outcome"})

	UsersRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "madidi_users_registered_total",
		Help: "Usuarios registrados",
	})

	CheckoutsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "madidi_checkouts_total",
		Help: "Checkouts por método de pago y resultado",
	}, []string{"payment_method", "result"})
)

// Register registra las métricas de dominio en el registry dado
// (o el default si es nil). Ignora duplicados.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		OrdersCreated,
		OrderStatusChanges,
		PaymentsProcessed,
		EmailsSent,
		ReviewVotes,
		UsersRegistered,
		CheckoutsStarted,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordEmail registra el resultado de un envío de email.
func RecordEmail(template, result string) {
	EmailsSent.WithLabelValues(template, result).Inc()
}
