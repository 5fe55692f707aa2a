package workorder

import (
	"github.com/plantpulse/plantpulse/internal/workorder/repository"
	"github.com/plantpulse/plantpulse/internal/workorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
