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

// Estrategia de reparto de la cantidad entregada entre las líneas del
// movimiento.
const (
	// SplitProportional usa el desglose real por producto de la
	// asignación: cada línea lleva exactamente lo que se tomó de los
	// lotes de ese producto. Es el comportamiento por defecto.
	SplitProportional = "proportional"
	// SplitEvenLegacy reparte la cantidad entregada en partes iguales
	// entre todos los productos que coincidieron con el nombre pedido,
	// sin importar cuánto aportó cada uno. Reproduce el comportamiento
	// histórico de los reportes; puede atribuir cantidad a un producto
	// que no aportó stock. Mantener apagado salvo que los reportes
	// heredados lo requieran.
	SplitEvenLegacy = "even"
)

// RecordContext metadatos del movimiento a registrar.
type RecordContext struct {
	SourceActorID   string // quien entrega
	DestActorID     string // quien recibe
	OperatorID      string
	Notes           string
	Role            string // "delivery", "donation_intake", ...
	Direction       string // entity.MovementDirectionEgress o Ingress
	MatchedProducts []entity.Product
}

// MovementLedger construye y persiste el registro inmutable de cada
// asignación: una cabecera y una línea por producto tocado.
type MovementLedger struct {
	split string
}

// NewMovementLedger construye el libro con la estrategia de reparto dada;
// cadena vacía o desconocida cae en SplitProportional.
func NewMovementLedger(split string) *MovementLedger {
	if split != SplitEvenLegacy {
		split = SplitProportional
	}
	return &MovementLedger{split: split}
}

// Record persiste la cabecera con sus líneas. Para una asignación sin
// entrega (noStock) no hay nada que registrar y devuelve nil sin error.
func (l *MovementLedger) Record(
	ctx context.Context,
	movementRepo repository.MovementRepository,
	result domalloc.Result,
	rc RecordContext,
	now time.Time,
) (*entity.Movement, error) {
	if result.Delivered.IsZero() {
		return nil, nil
	}

	movement := &entity.Movement{
		ID:            uuid.New().String(),
		Date:          now,
		SourceActorID: rc.SourceActorID,
		DestActorID:   rc.DestActorID,
		Status:        entity.MovementStatusCompleted,
		Notes:         rc.Notes,
		CreatedAt:     now,
		CreatedBy:     rc.OperatorID,
	}

	// El reparto legado solo aplica a entregas repartidas entre productos
	// coincidentes; un ingreso (donación) trae el desglose exacto de un
	// solo producto y siempre va proporcional.
	var details []entity.MovementDetail
	if l.split == SplitEvenLegacy && len(rc.MatchedProducts) > 0 {
		details = l.evenDetails(movement.ID, result, rc)
	} else {
		details = l.proportionalDetails(movement.ID, result, rc)
	}
	if len(details) == 0 {
		return nil, domain.ErrInvalidInput
	}
	movement.Details = details

	if err := movementRepo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// proportionalDetails: una línea por producto con lo realmente tomado de
// sus lotes. El redondeo a dos decimales puede dejar un residuo; lo
// absorbe la última línea para que la suma iguale la cantidad del evento.
func (l *MovementLedger) proportionalDetails(movementID string, result domalloc.Result, rc RecordContext) []entity.MovementDetail {
	takes := result.PerProduct()
	details := make([]entity.MovementDetail, 0, len(takes))
	assigned := decimal.Zero
	for i, take := range takes {
		qty := take.Amount.Round(2)
		if i == len(takes)-1 {
			qty = result.Delivered.Sub(assigned)
		}
		assigned = assigned.Add(qty)
		details = append(details, entity.MovementDetail{
			ID:         uuid.New().String(),
			MovementID: movementID,
			ProductID:  take.ProductID,
			Quantity:   qty,
			Direction:  rc.Direction,
			Role:       rc.Role,
			Note:       rc.Notes,
		})
	}
	return details
}

// evenDetails: reparto histórico delivered/n entre los productos
// coincidentes. La última línea absorbe el residuo de redondeo.
func (l *MovementLedger) evenDetails(movementID string, result domalloc.Result, rc RecordContext) []entity.MovementDetail {
	n := len(rc.MatchedProducts)
	if n == 0 {
		return nil
	}
	share := result.Delivered.Div(decimal.NewFromInt(int64(n))).Round(2)
	details := make([]entity.MovementDetail, 0, n)
	assigned := decimal.Zero
	for i, p := range rc.MatchedProducts {
		qty := share
		if i == n-1 {
			qty = result.Delivered.Sub(assigned)
		}
		assigned = assigned.Add(qty)
		details = append(details, entity.MovementDetail{
			ID:         uuid.New().String(),
			MovementID: movementID,
			ProductID:  p.ID,
			Quantity:   qty,
			Direction:  rc.Direction,
			Role:       rc.Role,
			Note:       rc.Notes,
		})
	}
	return details
}
