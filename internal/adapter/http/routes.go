package http

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the service routes. writeMW wraps only the mutating
// contract routes.
func RegisterRoutes(e *echo.Echo, h *Handler, ch *ContractHandler, writeMW ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health)

	e.GET("/contracts", ch.ListContracts)
	e.POST("/contracts", ch.CreateContract, writeMW...)
	e.PUT("/contracts", ch.UpdateContract, writeMW...)
	e.DELETE("/contracts/:id", ch.DeleteContract, writeMW...)

	e.GET("/contracts_summary", ch.Summary)
}
