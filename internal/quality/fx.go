package quality

import (
	"github.com/plantpulse/plantpulse/internal/quality/repository"
	"github.com/plantpulse/plantpulse/internal/quality/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quality.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
