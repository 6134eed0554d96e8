package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

func NewScheduler(lc fx.Lifecycle, sched *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sched.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
