package allocation

import (
	"context"
	"time"

	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"github.com/tu-usuario/bancoalimentos-api/pkg/logger"
)

// ApproveRequestUseCase orquesta la aprobación de una solicitud: bajo el
// guard de duplicados y dentro de una sola transacción, resuelve el
// nombre pedido a lotes candidatos, descuenta stock en orden FIFO,
// actualiza el acumulado de la solicitud y registra el movimiento.
type ApproveRequestUseCase struct {
	txRunner  TxRunner
	guard     *DuplicateGuard
	allocator *Allocator
	eventRepo repository.AllocationEventRepository // lecturas fuera de tx
	log       *logger.Logger

	now func() time.Time
}

// NewApproveRequestUseCase construye el caso de uso.
func NewApproveRequestUseCase(
	txRunner TxRunner,
	guard *DuplicateGuard,
	allocator *Allocator,
	eventRepo repository.AllocationEventRepository,
	log *logger.Logger,
) *ApproveRequestUseCase {
	return &ApproveRequestUseCase{
		txRunner:  txRunner,
		guard:     guard,
		allocator: allocator,
		eventRepo: eventRepo,
		log:       log,
		now:       time.Now,
	}
}

// ApproveRequest ejecuta la asignación para una solicitud. Llamadas
// concurrentes con el mismo id comparten una sola ejecución (guard); la
// secuencia descuento de lotes → evento → solicitud → movimiento corre en
// una transacción: una falla posterior a un descuento parcial revierte todo.
func (uc *ApproveRequestUseCase) ApproveRequest(ctx context.Context, requestID, operatorID, comment string) (*dto.AllocationResultResponse, error) {
	if requestID == "" || operatorID == "" {
		return nil, domain.ErrInvalidInput
	}

	value, err := uc.guard.Do("solicitud:"+requestID, func() (interface{}, error) {
		var out *dto.AllocationResultResponse
		txErr := uc.txRunner.Run(ctx, func(
			lotRepo repository.LotRepository,
			productRepo repository.ProductRepository,
			requestRepo repository.RequestRepository,
			eventRepo repository.AllocationEventRepository,
			movementRepo repository.MovementRepository,
		) error {
			req, err := requestRepo.GetForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrNotFound
			}
			out, err = uc.allocator.AllocateForRequest(ctx,
				lotRepo, productRepo, requestRepo, eventRepo, movementRepo,
				req, operatorID, comment, uc.now())
			return err
		})
		if txErr != nil {
			return nil, txErr
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*dto.AllocationResultResponse), nil
}

// RejectRequest rechaza una solicitud pendiente. Solo la transición
// pending → rejected es válida; rejected es terminal.
func (uc *ApproveRequestUseCase) RejectRequest(ctx context.Context, requestID, operatorID string) error {
	if requestID == "" || operatorID == "" {
		return domain.ErrInvalidInput
	}
	_, err := uc.guard.Do("solicitud:"+requestID, func() (interface{}, error) {
		err := uc.txRunner.Run(ctx, func(
			_ repository.LotRepository,
			_ repository.ProductRepository,
			requestRepo repository.RequestRepository,
			_ repository.AllocationEventRepository,
			_ repository.MovementRepository,
		) error {
			req, err := requestRepo.GetForUpdate(ctx, requestID)
			if err != nil {
				return err
			}
			if req == nil {
				return domain.ErrNotFound
			}
			if req.State != entity.RequestStatePending {
				return domain.ErrInvalidStateTransition
			}
			req.State = entity.RequestStateRejected
			req.UpdatedAt = uc.now()
			return requestRepo.UpdateAllocation(ctx, req)
		})
		if err == nil {
			uc.log.Info().Str("solicitud", requestID).Str("operator", operatorID).Msg("solicitud rechazada")
		}
		return nil, err
	})
	return err
}

// GetFulfillmentHistory devuelve el historial de entregas de una
// solicitud, ordenado de forma estable (created_at, id). Solo lectura.
func (uc *ApproveRequestUseCase) GetFulfillmentHistory(ctx context.Context, requestID string) ([]dto.AllocationEventResponse, error) {
	if requestID == "" {
		return nil, domain.ErrInvalidInput
	}
	events, err := uc.eventRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AllocationEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.AllocationEventResponse{
			ID:         e.ID,
			RequestID:  e.RequestID,
			Quantity:   e.Quantity,
			Percentage: e.Percentage,
			OperatorID: e.OperatorID,
			Comment:    e.Comment,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}
