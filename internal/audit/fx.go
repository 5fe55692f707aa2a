package audit

import (
	"github.com/plantpulse/plantpulse/internal/audit/repository"
	"github.com/plantpulse/plantpulse/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
