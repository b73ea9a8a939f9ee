package allocation

import (
	"context"
	"time"

	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	domalloc "github.com/tu-usuario/bancoalimentos-api/internal/domain/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"github.com/tu-usuario/bancoalimentos-api/pkg/logger"
)

// Allocator encadena matcher → motor → tracker → libro para una
// solicitud ya cargada y bloqueada. Se invoca con repositorios atados a
// la transacción del caller, de modo que la ruta de aprobación de
// solicitud y la de donación (asignación dependiente) compartan la misma
// secuencia dentro de sus propias transacciones.
type Allocator struct {
	matcher Matcher
	engine  *domalloc.Engine
	tracker *FulfillmentTracker
	ledger  *MovementLedger
	log     *logger.Logger

	bankActorID string
}

// NewAllocator construye el pipeline de asignación.
func NewAllocator(matcher Matcher, ledger *MovementLedger, bankActorID string, log *logger.Logger) *Allocator {
	return &Allocator{
		matcher:     matcher,
		engine:      domalloc.NewEngine(),
		tracker:     NewFulfillmentTracker(),
		ledger:      ledger,
		log:         log,
		bankActorID: bankActorID,
	}
}

// AllocateForRequest ejecuta la asignación completa para la solicitud.
// Precondiciones: req ya validado como no-nil y bloqueado FOR UPDATE por
// el caller. Estados terminales fallan con ErrInvalidStateTransition;
// cantidad pedida no positiva con ErrInvalidQuantity.
func (a *Allocator) AllocateForRequest(
	ctx context.Context,
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	requestRepo repository.RequestRepository,
	eventRepo repository.AllocationEventRepository,
	movementRepo repository.MovementRepository,
	req *entity.Request,
	operatorID, comment string,
	now time.Time,
) (*dto.AllocationResultResponse, error) {
	if req.IsTerminal() {
		return nil, domain.ErrInvalidStateTransition
	}
	if !req.RequestedQuantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}

	candidates, matched, err := a.matcher.Match(ctx, productRepo, lotRepo, req.ProductName)
	if err != nil {
		return nil, err
	}

	result, err := a.engine.Allocate(ctx, lotRepo, candidates, req.RemainingQuantity())
	if err != nil {
		return nil, err
	}

	event, err := a.tracker.Apply(ctx, eventRepo, requestRepo, req, result, operatorID, comment, now)
	if err != nil {
		return nil, err
	}

	movement, err := a.ledger.Record(ctx, movementRepo, result, RecordContext{
		SourceActorID:   a.bankActorID,
		DestActorID:     req.BeneficiaryID,
		OperatorID:      operatorID,
		Notes:           comment,
		Role:            "delivery",
		Direction:       entity.MovementDirectionEgress,
		MatchedProducts: matched,
	}, now)
	if err != nil {
		return nil, err
	}

	logEvent := a.log.Info().
		Str("solicitud", req.ID).
		Str("outcome", result.Outcome).
		Str("delivered", result.Delivered.String()).
		Int("percentage", req.FulfillmentPercentage()).
		Str("event", event.ID)
	if movement != nil {
		logEvent = logEvent.Str("movement", movement.ID)
	}
	logEvent.Msg("asignación registrada")

	return &dto.AllocationResultResponse{
		RequestID:  req.ID,
		Outcome:    result.Outcome,
		Delivered:  result.Delivered,
		Remainder:  result.Remainder,
		Percentage: req.FulfillmentPercentage(),
		State:      req.State,
	}, nil
}
