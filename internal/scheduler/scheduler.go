// Package scheduler drives the periodic billing jobs: opening billing
// periods and flipping sent invoices to overdue.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	billingperioddomain "github.com/kofiy77/joyjoy-Locums/internal/billingperiod/domain"
	"github.com/kofiy77/joyjoy-Locums/internal/clock"
	invoicedomain "github.com/kofiy77/joyjoy-Locums/internal/invoice/domain"
	obsmetrics "github.com/kofiy77/joyjoy-Locums/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log        *zap.Logger
	Clock      clock.Clock
	PeriodSvc  billingperioddomain.Service
	InvoiceSvc invoicedomain.Service
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	periodSvc  billingperioddomain.Service
	invoiceSvc invoicedomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.PeriodSvc == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		periodSvc:  p.PeriodSvc,
		invoiceSvc: p.InvoiceSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	obsmetrics.IncJobRun(name)
	err := fn(ctx)
	obsmetrics.ObserveJobDuration(name, time.Since(start))
	if err == nil {
		return nil
	}

	obsmetrics.IncJobError(name)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	err = errors.Join(err, s.runJob(parent, "ensure_period", 30*time.Second, s.EnsurePeriodJob))
	err = errors.Join(err, s.runJob(parent, "mark_overdue", 30*time.Second, s.MarkOverdueJob))

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) EnsurePeriodJob(ctx context.Context) error {
	period, err := s.periodSvc.EnsureCurrentPeriod(ctx)
	if err != nil {
		return err
	}
	if period != nil {
		s.log.Debug("current billing period ensured",
			zap.String("period_id", period.ID.String()),
			zap.Time("period_end", period.PeriodEnd),
		)
	}
	return nil
}

func (s *Scheduler) MarkOverdueJob(ctx context.Context) error {
	_, err := s.invoiceSvc.MarkOverdueInvoices(ctx)
	return err
}
