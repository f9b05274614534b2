package logger

import (
	"time"

	"go.uber.org/zap"
)

// ---- HTTP ----

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes crea un campo para los bytes escritos en la respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// UserAgent crea un campo para el User-Agent.
func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// ---- Negocio ----

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Email crea un campo para el email (enmascarar en prod).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// BusinessID crea un campo para el ID del negocio.
func BusinessID(v string) zap.Field {
	return zap.String("business_id", v)
}

// ProductID crea un campo para el ID del producto.
func ProductID(v string) zap.Field {
	return zap.String("product_id", v)
}

// OrderID crea un campo para el ID de la orden.
func OrderID(v string) zap.Field {
	return zap.String("order_id", v)
}

// PaymentID crea un campo para el ID del pago.
func PaymentID(v string) zap.Field {
	return zap.String("payment_id", v)
}

// ReviewID crea un campo para el ID de la reseña.
func ReviewID(v string) zap.Field {
	return zap.String("review_id", v)
}

// TripID crea un campo para el ID de un viaje de compras.
func TripID(v string) zap.Field {
	return zap.String("trip_id", v)
}

// Template crea un campo para el template de email enviado.
func Template(v string) zap.Field {
	return zap.String("template", v)
}

// Amount crea un campo para un monto en centavos.
func Amount(v int64) zap.Field {
	return zap.Int64("amount_cents", v)
}

// ---- Sistema ----

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (handler, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// ---- Genéricos ----

// Count crea un campo para un conteo.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// ID crea un campo genérico para un ID.
func ID(v string) zap.Field {
	return zap.String("id", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// Any crea un campo genérico para cualquier tipo.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
