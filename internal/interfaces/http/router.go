package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/allocation"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/donation"
	"github.com/tu-usuario/bancoalimentos-api/internal/application/movement"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SolicitudUC *allocation.ApproveRequestUseCase
	DonacionUC  *donation.ApproveDonationUseCase
	MovementUC  *movement.QueryUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solicitudes (protegido)
	solicitudes := protected.Group("/solicitudes")
	solicitudHandler := NewSolicitudHandler(deps.SolicitudUC)
	solicitudes.Post("/:id/approve", solicitudHandler.Approve)
	solicitudes.Post("/:id/reject", solicitudHandler.Reject)
	solicitudes.Get("/:id/historial", solicitudHandler.History)

	// Donaciones (protegido)
	donaciones := protected.Group("/donaciones")
	donacionHandler := NewDonacionHandler(deps.DonacionUC)
	donaciones.Post("/:id/approve", donacionHandler.Approve)
	donaciones.Post("/:id/reject", donacionHandler.Reject)

	// Movimientos (protegido, solo lectura)
	movimientos := protected.Group("/movimientos")
	movimientoHandler := NewMovimientoHandler(deps.MovementUC)
	movimientos.Get("/", movimientoHandler.List)
	movimientos.Get("/:id", movimientoHandler.GetByID)
}
