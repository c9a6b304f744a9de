package invoice

import (
	"github.com/ecotrail/ecotrail/internal/invoice/ocr"
	"github.com/ecotrail/ecotrail/internal/invoice/repository"
	"github.com/ecotrail/ecotrail/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(ocr.NewUnavailable),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
