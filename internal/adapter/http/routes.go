package http

import (
	"water-chiller-check/internal/adapter/middleware"
	"water-chiller-check/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

// Routes mounts the checklist endpoints on g, which must already run
// middleware.Authenticate. idem wraps the mutating routes after the role check.
func (h *CheckHandler) Routes(g *echo.Group, idem echo.MiddlewareFunc) {
	if idem == nil {
		idem = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	can := middleware.Authorize

	g.GET("", h.List, can(actor.ActionList))
	g.GET("/create", h.CreateForm, can(actor.ActionCreate))
	g.POST("", h.Create, can(actor.ActionCreate), idem)
	g.GET("/:id", h.Show, can(actor.ActionShow))
	g.GET("/:id/edit", h.EditForm, can(actor.ActionEdit))
	g.PUT("/:id", h.Update, can(actor.ActionEdit), idem)
	g.POST("/:id/approve", h.Approve, can(actor.ActionApprove), idem)
	g.GET("/:id/pdf", h.ExportPDF, can(actor.ActionExport))
	g.GET("/:id/xlsx", h.ExportXLSX, can(actor.ActionExport))
}
