package movement_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/movement"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/entity"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
	"github.com/tu-usuario/bancoalimentos-api/internal/infrastructure/memory"
)

func seedMovement(t *testing.T, store *memory.Store, id string, date time.Time, productID, direction string, qty float64) {
	t.Helper()
	err := store.Run(context.Background(), func(
		_ repository.LotRepository,
		_ repository.ProductRepository,
		_ repository.RequestRepository,
		_ repository.AllocationEventRepository,
		movementRepo repository.MovementRepository,
	) error {
		return movementRepo.Create(context.Background(), &entity.Movement{
			ID:            id,
			Date:          date,
			SourceActorID: "banco",
			DestActorID:   "ben-1",
			Status:        entity.MovementStatusCompleted,
			CreatedBy:     "op-1",
			Details: []entity.MovementDetail{{
				ID: id + "-d1", MovementID: id, ProductID: productID,
				Quantity: decimal.NewFromFloat(qty), Direction: direction, Role: "delivery",
			}},
		})
	})
	require.NoError(t, err)
}

// Caso 1: listado por defecto: más recientes primero, límite 20 cuando no
// se pide otro, con las líneas incluidas.
func TestQueryUseCase_ListaMasRecientesPrimero(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seedMovement(t, store, "mov-1", base, "p-arroz", entity.MovementDirectionEgress, 5)
	seedMovement(t, store, "mov-2", base.Add(time.Hour), "p-frijol", entity.MovementDirectionEgress, 3)
	uc := movement.NewQueryUseCase(store.MovementRepo())

	out, err := uc.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "mov-2", out[0].ID)
	assert.Equal(t, "mov-1", out[1].ID)
	require.Len(t, out[0].Details, 1)
	assert.Equal(t, "p-frijol", out[0].Details[0].ProductID)
}

// Caso 2: filtros por producto, dirección y rango de fechas.
func TestQueryUseCase_Filtros(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	seedMovement(t, store, "mov-in", base, "p-arroz", entity.MovementDirectionIngress, 10)
	seedMovement(t, store, "mov-out", base.Add(time.Hour), "p-arroz", entity.MovementDirectionEgress, 4)
	seedMovement(t, store, "mov-otro", base.Add(2*time.Hour), "p-frijol", entity.MovementDirectionEgress, 2)
	uc := movement.NewQueryUseCase(store.MovementRepo())
	ctx := context.Background()

	out, err := uc.List(ctx, repository.MovementFilter{Direction: entity.MovementDirectionIngress})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "mov-in", out[0].ID)

	out, err = uc.List(ctx, repository.MovementFilter{ProductID: "p-arroz"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	from := base.Add(30 * time.Minute)
	to := base.Add(90 * time.Minute)
	out, err = uc.List(ctx, repository.MovementFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "mov-out", out[0].ID)
}

// Caso 3: consulta puntual por id; inexistente devuelve ErrNotFound.
func TestQueryUseCase_GetByID(t *testing.T) {
	store := memory.NewStore()
	seedMovement(t, store, "mov-1", time.Now(), "p-arroz", entity.MovementDirectionEgress, 5)
	uc := movement.NewQueryUseCase(store.MovementRepo())
	ctx := context.Background()

	out, err := uc.GetByID(ctx, "mov-1")
	require.NoError(t, err)
	assert.Equal(t, "mov-1", out.ID)
	require.Len(t, out.Details, 1)

	_, err = uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Caso 4: paginación con limit y offset sobre el orden descendente.
func TestQueryUseCase_Paginacion(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedMovement(t, store, "mov-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour), "p-arroz", entity.MovementDirectionEgress, 1)
	}
	uc := movement.NewQueryUseCase(store.MovementRepo())

	out, err := uc.List(context.Background(), repository.MovementFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "mov-d", out[0].ID, "offset salta el más reciente")
	assert.Equal(t, "mov-c", out[1].ID)
}
