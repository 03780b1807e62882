package app

import (
	"go.uber.org/fx"

	"github.com/mesa-labs/mesa/internal/auth"
	"github.com/mesa-labs/mesa/internal/cache"
	"github.com/mesa-labs/mesa/internal/config"
	"github.com/mesa-labs/mesa/internal/database"
	"github.com/mesa-labs/mesa/internal/logger"
	"github.com/mesa-labs/mesa/internal/messaging"
	"github.com/mesa-labs/mesa/internal/observability"
	"github.com/mesa-labs/mesa/internal/pdf"
	repositoryfood "github.com/mesa-labs/mesa/internal/repository/food"
	repositoryorder "github.com/mesa-labs/mesa/internal/repository/order"
	repositorytable "github.com/mesa-labs/mesa/internal/repository/table"
	httpserver "github.com/mesa-labs/mesa/internal/server/http"
	servicefood "github.com/mesa-labs/mesa/internal/service/food"
	serviceorder "github.com/mesa-labs/mesa/internal/service/order"
	servicereceipt "github.com/mesa-labs/mesa/internal/service/receipt"
	servicetable "github.com/mesa-labs/mesa/internal/service/table"
	"github.com/mesa-labs/mesa/internal/storage"
	transporthttp "github.com/mesa-labs/mesa/internal/transport/http"
	"github.com/mesa-labs/mesa/internal/worker"
	workerorder "github.com/mesa-labs/mesa/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	logger.Module,
	cache.Module,
	database.Module,
	messaging.Module,
	observability.Module,
	auth.Module,
	storage.Module,
	pdf.Module,
	repositorytable.Module,
	repositoryfood.Module,
	repositoryorder.Module,
	servicetable.Module,
	servicefood.Module,
	serviceorder.Module,
	servicereceipt.Module,
)

// HTTP wires the HTTP transport on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
)

// Worker exposes background processing of order lifecycle events.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
