package attendance

import (
	"github.com/plantpulse/plantpulse/internal/attendance/repository"
	"github.com/plantpulse/plantpulse/internal/attendance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("attendance.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
