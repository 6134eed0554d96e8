package ratecard

import (
	"github.com/kofiy77/joyjoy-Locums/internal/ratecard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratecard.service",
	fx.Provide(service.NewService),
)
