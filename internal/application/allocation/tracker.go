package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	domalloc "github.com/tu-usuario/bancoalimentos-api/internal/domain/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

// FulfillmentTracker aplica un resultado de asignación al estado
// acumulado de la solicitud y maneja su máquina de estados.
type FulfillmentTracker struct{}

// NewFulfillmentTracker construye el tracker.
func NewFulfillmentTracker() *FulfillmentTracker {
	return &FulfillmentTracker{}
}

// Apply registra el evento de entrega y actualiza la solicitud.
// Precondición: la solicitud debe estar en pending o approved; los
// estados terminales rechazan con ErrInvalidStateTransition.
// CumulativeDelivered queda topado en RequestedQuantity aunque el
// resultado traiga de más (doble entrega patológica). Una asignación con
// entrega cero (stockout total) igual registra el evento para auditoría
// pero no cambia el estado acumulado.
func (t *FulfillmentTracker) Apply(
	ctx context.Context,
	eventRepo repository.AllocationEventRepository,
	requestRepo repository.RequestRepository,
	req *entity.Request,
	result domalloc.Result,
	operatorID, comment string,
	now time.Time,
) (*entity.AllocationEvent, error) {
	if req.State != entity.RequestStatePending && req.State != entity.RequestStateApproved {
		return nil, domain.ErrInvalidStateTransition
	}

	// Tope: nunca acumular más de lo pedido.
	applied := decimal.Min(result.Delivered, req.RemainingQuantity())
	before := req.FulfillmentPercentage()
	req.UpdatedAt = now

	// Entrega cero (stockout total): se registra el evento para auditoría
	// pero el estado de la solicitud no cambia.
	if applied.IsPositive() {
		req.CumulativeDelivered = req.CumulativeDelivered.Add(applied)
		if req.CumulativeDelivered.GreaterThanOrEqual(req.RequestedQuantity) {
			req.CumulativeDelivered = req.RequestedQuantity
			req.State = entity.RequestStateFulfilled
		} else {
			req.State = entity.RequestStateApproved
		}
	}

	event := &entity.AllocationEvent{
		ID:         uuid.New().String(),
		RequestID:  req.ID,
		Quantity:   applied,
		Percentage: req.FulfillmentPercentage() - before,
		OperatorID: operatorID,
		Comment:    comment,
		CreatedAt:  now,
	}
	if err := eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	if err := requestRepo.UpdateAllocation(ctx, req); err != nil {
		return nil, err
	}
	return event, nil
}
