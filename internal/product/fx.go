package product

import (
	"github.com/plantpulse/plantpulse/internal/product/repository"
	"github.com/plantpulse/plantpulse/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
