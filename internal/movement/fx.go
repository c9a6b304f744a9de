package movement

import (
	"github.com/ecotrail/ecotrail/internal/movement/repository"
	"github.com/ecotrail/ecotrail/internal/movement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("movement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
