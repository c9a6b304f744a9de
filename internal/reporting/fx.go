package reporting

import (
	"github.com/ecotrail/ecotrail/internal/reporting/repository"
	"github.com/ecotrail/ecotrail/internal/reporting/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reporting.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
