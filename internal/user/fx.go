package user

import (
	"github.com/ecotrail/ecotrail/internal/user/repository"
	"github.com/ecotrail/ecotrail/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
