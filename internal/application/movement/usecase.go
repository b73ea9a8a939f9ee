package movement

import (
	"context"

	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

// QueryUseCase expone el libro de movimientos como log consultable para
// el módulo de reportes/exportación. Solo lectura: este subsistema no
// formatea ni exporta.
type QueryUseCase struct {
	movementRepo repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(movementRepo repository.MovementRepository) *QueryUseCase {
	return &QueryUseCase{movementRepo: movementRepo}
}

// GetByID devuelve una cabecera con sus líneas; ErrNotFound si no existe.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(*m)
	return &resp, nil
}

// List devuelve cabeceras con sus líneas según el filtro (rango de
// fechas, producto, dirección), más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]dto.MovementResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	movements, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toResponse(m))
	}
	return out, nil
}

func toResponse(m entity.Movement) dto.MovementResponse {
	resp := dto.MovementResponse{
		ID:            m.ID,
		Date:          m.Date,
		SourceActorID: m.SourceActorID,
		DestActorID:   m.DestActorID,
		Status:        m.Status,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		Details:       make([]dto.MovementDetailResponse, 0, len(m.Details)),
	}
	for _, d := range m.Details {
		resp.Details = append(resp.Details, dto.MovementDetailResponse{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Direction: d.Direction,
			Role:      d.Role,
			Note:      d.Note,
		})
	}
	return resp
}
