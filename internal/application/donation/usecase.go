package donation

import (
	"context"
	"time"

	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	domalloc "github.com/tu-usuario/bancoalimentos-api/internal/domain/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"github.com/tu-usuario/bancoalimentos-api/pkg/logger"
)

// ApproveDonationUseCase aprueba una donación: ingresa el stock en la
// sede, registra el movimiento de entrada y, si la donación referencia
// una solicitud dependiente, ejecuta su asignación en la misma
// transacción (ruta donateAndAllocate).
type ApproveDonationUseCase struct {
	txRunner  allocation.TxRunner
	guard     *allocation.DuplicateGuard
	allocator *allocation.Allocator
	ledger    *allocation.MovementLedger
	log       *logger.Logger

	bankActorID string
	now         func() time.Time
}

// NewApproveDonationUseCase construye el caso de uso.
func NewApproveDonationUseCase(
	txRunner allocation.TxRunner,
	guard *allocation.DuplicateGuard,
	allocator *allocation.Allocator,
	ledger *allocation.MovementLedger,
	bankActorID string,
	log *logger.Logger,
) *ApproveDonationUseCase {
	return &ApproveDonationUseCase{
		txRunner:    txRunner,
		guard:       guard,
		allocator:   allocator,
		ledger:      ledger,
		log:         log,
		bankActorID: bankActorID,
		now:         time.Now,
	}
}

// ApproveDonation ingresa la donación y dispara la asignación dependiente
// cuando aplica. El ingreso del lote, el movimiento de entrada, el cambio
// de estado de la donación y la asignación dependiente son atómicos.
func (uc *ApproveDonationUseCase) ApproveDonation(ctx context.Context, donationID, operatorID string) (*dto.DonationResultResponse, error) {
	if donationID == "" || operatorID == "" {
		return nil, domain.ErrInvalidInput
	}

	value, err := uc.guard.Do("donacion:"+donationID, func() (interface{}, error) {
		var out *dto.DonationResultResponse
		txErr := uc.txRunner.RunDonation(ctx, func(
			donationRepo repository.DonationRepository,
			lotRepo repository.LotRepository,
			productRepo repository.ProductRepository,
			requestRepo repository.RequestRepository,
			eventRepo repository.AllocationEventRepository,
			movementRepo repository.MovementRepository,
		) error {
			don, err := donationRepo.GetForUpdate(ctx, donationID)
			if err != nil {
				return err
			}
			if don == nil {
				return domain.ErrNotFound
			}
			if don.State != entity.DonationStatePending {
				return domain.ErrInvalidStateTransition
			}
			if !don.Quantity.IsPositive() {
				return domain.ErrInvalidQuantity
			}

			// El producto donado debe existir en el catálogo; la donación
			// llega del módulo CRUD con un id que pudo quedar huérfano.
			product, err := productRepo.GetByID(ctx, don.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}

			now := uc.now()
			if err := lotRepo.Increment(ctx, don.LocationID, don.ProductID, don.Quantity); err != nil {
				return err
			}

			// Movimiento de entrada: benefactor → banco, una línea por el
			// producto donado.
			intake := domalloc.Result{
				Delivered: don.Quantity.Round(2),
				Breakdown: []domalloc.LotTake{{
					Lot:    entity.StockLot{LocationID: don.LocationID, ProductID: don.ProductID},
					Amount: don.Quantity,
				}},
				Outcome: domalloc.OutcomeComplete,
			}
			if _, err := uc.ledger.Record(ctx, movementRepo, intake, allocation.RecordContext{
				SourceActorID: don.BenefactorID,
				DestActorID:   uc.bankActorID,
				OperatorID:    operatorID,
				Notes:         don.Notes,
				Role:          "donation_intake",
				Direction:     entity.MovementDirectionIngress,
			}, now); err != nil {
				return err
			}

			don.State = entity.DonationStateApproved
			don.UpdatedAt = now
			if err := donationRepo.UpdateState(ctx, don); err != nil {
				return err
			}

			out = &dto.DonationResultResponse{DonationID: don.ID, State: don.State}

			// Asignación dependiente: solo si la solicitud vinculada sigue
			// asignable; si ya es terminal el ingreso se conserva igual.
			if don.RequestID != "" {
				req, err := requestRepo.GetForUpdate(ctx, don.RequestID)
				if err != nil {
					return err
				}
				if req == nil || req.IsTerminal() {
					uc.log.Warn().
						Str("donacion", don.ID).
						Str("solicitud", don.RequestID).
						Msg("solicitud dependiente no asignable, se omite")
					return nil
				}
				alloc, err := uc.allocator.AllocateForRequest(ctx,
					lotRepo, productRepo, requestRepo, eventRepo, movementRepo,
					req, operatorID, "entrega por donación "+don.ID, now)
				if err != nil {
					return err
				}
				out.Allocation = alloc
			}
			return nil
		})
		if txErr != nil {
			return nil, txErr
		}
		uc.log.Info().
			Str("donacion", out.DonationID).
			Bool("con_asignacion", out.Allocation != nil).
			Msg("donación aprobada")
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*dto.DonationResultResponse), nil
}

// RejectDonation rechaza una donación pendiente sin tocar stock.
func (uc *ApproveDonationUseCase) RejectDonation(ctx context.Context, donationID, operatorID string) error {
	if donationID == "" || operatorID == "" {
		return domain.ErrInvalidInput
	}
	_, err := uc.guard.Do("donacion:"+donationID, func() (interface{}, error) {
		return nil, uc.txRunner.RunDonation(ctx, func(
			donationRepo repository.DonationRepository,
			_ repository.LotRepository,
			_ repository.ProductRepository,
			_ repository.RequestRepository,
			_ repository.AllocationEventRepository,
			_ repository.MovementRepository,
		) error {
			don, err := donationRepo.GetForUpdate(ctx, donationID)
			if err != nil {
				return err
			}
			if don == nil {
				return domain.ErrNotFound
			}
			if don.State != entity.DonationStatePending {
				return domain.ErrInvalidStateTransition
			}
			don.State = entity.DonationStateRejected
			don.UpdatedAt = uc.now()
			return donationRepo.UpdateState(ctx, don)
		})
	})
	return err
}
