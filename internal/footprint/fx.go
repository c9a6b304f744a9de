package footprint

import (
	"github.com/ecotrail/ecotrail/internal/footprint/repository"
	"github.com/ecotrail/ecotrail/internal/footprint/service"
	"go.uber.org/fx"
)

var Module = fx.Module("footprint.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
