package production

import (
	"github.com/plantpulse/plantpulse/internal/production/repository"
	"github.com/plantpulse/plantpulse/internal/production/service"
	"go.uber.org/fx"
)

var Module = fx.Module("production.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
