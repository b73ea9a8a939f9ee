package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/donation"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/dto"
)

// DonacionHandler maneja la aprobación y rechazo de donaciones (protegido).
type DonacionHandler struct {
	uc *donation.ApproveDonationUseCase
}

// NewDonacionHandler construye el handler.
func NewDonacionHandler(uc *donation.ApproveDonationUseCase) *DonacionHandler {
	return &DonacionHandler{uc: uc}
}

// Approve godoc
// @Summary      Aprobar una donación: ingresa stock y asigna la solicitud dependiente si existe
// @Tags         donaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la donación"
// @Success      200  {object}  dto.DonationResultResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/donaciones/{id}/approve [post]
func (h *DonacionHandler) Approve(c *fiber.Ctx) error {
	operatorID := GetOperatorID(c)
	if operatorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	result, err := h.uc.ApproveDonation(c.Context(), c.Params("id"), operatorID)
	if err != nil {
		return mapAllocationError(c, err)
	}
	return c.JSON(result)
}

// Reject godoc
// @Summary      Rechazar una donación pendiente
// @Tags         donaciones
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la donación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/donaciones/{id}/reject [post]
func (h *DonacionHandler) Reject(c *fiber.Ctx) error {
	operatorID := GetOperatorID(c)
	if operatorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	if err := h.uc.RejectDonation(c.Context(), c.Params("id"), operatorID); err != nil {
		return mapAllocationError(c, err)
	}
	return c.JSON(fiber.Map{"message": "donación rechazada"})
}
