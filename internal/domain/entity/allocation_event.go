package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationEvent registra una entrega parcial o completa contra una
// solicitud (historial). Append-only: la suma de Quantity de los eventos
// de una solicitud debe igualar su CumulativeDelivered.
type AllocationEvent struct {
	ID         string
	RequestID  string
	Quantity   decimal.Decimal // entregado en este evento (puede ser cero: stockout auditado)
	Percentage int             // porcentaje que aportó este evento
	OperatorID string
	Comment    string
	CreatedAt  time.Time
}
