package billingperiod

import (
	"github.com/kofiy77/joyjoy-Locums/internal/billingperiod/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billingperiod.service",
	fx.Provide(service.NewService),
)
