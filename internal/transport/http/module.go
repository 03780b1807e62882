package http

import (
	"go.uber.org/fx"

	foodtransport "github.com/mesa-labs/mesa/internal/transport/http/food"
	ordertransport "github.com/mesa-labs/mesa/internal/transport/http/order"
	tabletransport "github.com/mesa-labs/mesa/internal/transport/http/table"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	ordertransport.Module,
	tabletransport.Module,
	foodtransport.Module,
)
