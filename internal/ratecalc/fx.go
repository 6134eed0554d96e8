package ratecalc

import (
	"github.com/kofiy77/joyjoy-Locums/internal/ratecalc/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratecalc.service",
	fx.Provide(service.NewService),
)
