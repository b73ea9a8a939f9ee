package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
	"github.com/tu-usuario/bancoalimentos-api/internal/domain"
)

// SolicitudHandler maneja las peticiones HTTP de aprobación, rechazo e
// historial de solicitudes (protegido).
type SolicitudHandler struct {
	uc *allocation.ApproveRequestUseCase
}

// NewSolicitudHandler construye el handler.
func NewSolicitudHandler(uc *allocation.ApproveRequestUseCase) *SolicitudHandler {
	return &SolicitudHandler{uc: uc}
}

// Approve godoc
// @Summary      Aprobar una solicitud y ejecutar la asignación de stock
// @Tags         solicitudes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true   "ID de la solicitud"
// @Param        body  body  dto.ApproveRequestRequest  false  "comentario opcional"
// @Success      200   {object}  dto.AllocationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id}/approve [post]
func (h *SolicitudHandler) Approve(c *fiber.Ctx) error {
	operatorID := GetOperatorID(c)
	if operatorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ApproveRequestRequest
	// El cuerpo es opcional: solo trae el comentario.
	_ = c.BodyParser(&in)

	result, err := h.uc.ApproveRequest(c.Context(), c.Params("id"), operatorID, in.Comment)
	if err != nil {
		return mapAllocationError(c, err)
	}
	// El outcome (complete|partial|noStock) decide el banner en la UI;
	// siempre es 200: stock insuficiente no es un error HTTP.
	return c.JSON(result)
}

// Reject godoc
// @Summary      Rechazar una solicitud pendiente
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id}/reject [post]
func (h *SolicitudHandler) Reject(c *fiber.Ctx) error {
	operatorID := GetOperatorID(c)
	if operatorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.RejectRequest(c.Context(), c.Params("id"), operatorID); err != nil {
		return mapAllocationError(c, err)
	}
	return c.JSON(fiber.Map{"message": "solicitud rechazada"})
}

// History godoc
// @Summary      Historial de entregas de una solicitud
// @Tags         solicitudes
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {array}   dto.AllocationEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/solicitudes/{id}/historial [get]
func (h *SolicitudHandler) History(c *fiber.Ctx) error {
	events, err := h.uc.GetFulfillmentHistory(c.Context(), c.Params("id"))
	if err != nil {
		return mapAllocationError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(events), "events": events})
}

// mapAllocationError traduce errores de dominio a códigos HTTP. La capa
// CRUD decide el mensaje al usuario; aquí solo código y causa.
func mapAllocationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "error de almacenamiento"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
