package order

import (
	"go.uber.org/fx"

	"github.com/labstack/echo/v4"

	"github.com/mesa-labs/mesa/internal/auth"
)

// Module wires HTTP order handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler, resolver *auth.Resolver) {
		Register(e, h, resolver)
	}),
)
