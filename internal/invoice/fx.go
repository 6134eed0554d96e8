package invoice

import (
	"github.com/kofiy77/joyjoy-Locums/internal/invoice/render"
	"github.com/kofiy77/joyjoy-Locums/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(service.NewService),
	fx.Provide(render.NewRenderer),
)
