package downtime

import (
	"github.com/plantpulse/plantpulse/internal/downtime/repository"
	"github.com/plantpulse/plantpulse/internal/downtime/service"
	"go.uber.org/fx"
)

var Module = fx.Module("downtime.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
