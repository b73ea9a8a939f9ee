package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApproveRequestRequest cuerpo para aprobar una solicitud.
type ApproveRequestRequest struct {
	Comment string `json:"comment"`
}

// AllocationResultResponse resultado de una asignación para la UI.
// Outcome: complete | partial | noStock — desenlace de negocio, no error.
type AllocationResultResponse struct {
	RequestID  string          `json:"request_id"`
	Outcome    string          `json:"outcome"`
	Delivered  decimal.Decimal `json:"delivered"`
	Remainder  decimal.Decimal `json:"remainder"`
	Percentage int             `json:"percentage"`
	State      string          `json:"state"`
}

// AllocationEventResponse un evento del historial de entregas.
type AllocationEventResponse struct {
	ID         string          `json:"id"`
	RequestID  string          `json:"request_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Percentage int             `json:"percentage"`
	OperatorID string          `json:"operator_id"`
	Comment    string          `json:"comment,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DonationResultResponse resultado de aprobar una donación. Si la
// donación tenía una solicitud dependiente, Allocation trae el resultado
// de esa asignación.
type DonationResultResponse struct {
	DonationID string                    `json:"donation_id"`
	State      string                    `json:"state"`
	Allocation *AllocationResultResponse `json:"allocation,omitempty"`
}

// MovementDetailResponse una línea del libro de movimientos.
type MovementDetailResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Direction string          `json:"direction"`
	Role      string          `json:"role,omitempty"`
	Note      string          `json:"note,omitempty"`
}

// MovementResponse una cabecera del libro con sus líneas.
type MovementResponse struct {
	ID            string                   `json:"id"`
	Date          time.Time                `json:"date"`
	SourceActorID string                   `json:"source_actor_id"`
	DestActorID   string                   `json:"dest_actor_id"`
	Status        string                   `json:"status"`
	Notes         string                   `json:"notes,omitempty"`
	CreatedBy     string                   `json:"created_by"`
	Details       []MovementDetailResponse `json:"details"`
}
