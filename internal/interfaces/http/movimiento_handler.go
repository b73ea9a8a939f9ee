package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/movement"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain/repository"
)

// MovimientoHandler expone el libro de movimientos como log consultable
// para el módulo de reportes (protegido, solo lectura).
type MovimientoHandler struct {
	uc *movement.QueryUseCase
}

// NewMovimientoHandler construye el handler.
func NewMovimientoHandler(uc *movement.QueryUseCase) *MovimientoHandler {
	return &MovimientoHandler{uc: uc}
}

// List godoc
// @Summary      Consultar el libro de movimientos
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        direction   query  string  false  "ingress | egress"
// @Param        from        query  string  false  "Fecha desde (RFC 3339)"
// @Param        to          query  string  false  "Fecha hasta (RFC 3339)"
// @Param        limit       query  int     false  "Máximo de cabeceras"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movimientos [get]
func (h *MovimientoHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Direction: c.Query("direction"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "from: fecha inválida"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "to: fecha inválida"})
		}
		filter.To = &t
	}

	movements, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return mapAllocationError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(movements),
		"movements": movements,
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetByID godoc
// @Summary      Consultar un movimiento con sus líneas
// @Tags         movimientos
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movimientos/{id} [get]
func (h *MovimientoHandler) GetByID(c *fiber.Ctx) error {
	movement, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapAllocationError(c, err)
	}
	return c.JSON(movement)
}
