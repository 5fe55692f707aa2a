package client

import (
	"github.com/plantpulse/plantpulse/internal/client/repository"
	"github.com/plantpulse/plantpulse/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
