package refresh

import (
	"context"
	"errors"
	"fmt"

	"acquiring-gateway/internal/logger"
	"acquiring-gateway/internal/metrics"
	"acquiring-gateway/internal/payment"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type PaymentLister interface {
	ListByStatuses(ctx context.Context, statuses ...payment.Status) ([]*payment.Payment, error)
}

type StatusRefresher interface {
	RefreshStatus(ctx context.Context, p *payment.Payment) error
}

// Report summarizes one Run.
type Report struct {
	Processed int
	Failed    int
}

type Refresher struct {
	payments PaymentLister
	service  StatusRefresher
	notifier Notifier
	limiter  *rate.Limiter
}

// NewRefresher builds a Refresher. A nil notifier falls back to LogNotifier and
// a nil limiter disables pacing.
func NewRefresher(payments PaymentLister, service StatusRefresher, notifier Notifier, limiter *rate.Limiter) *Refresher {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Refresher{
		payments: payments,
		service:  service,
		notifier: notifier,
		limiter:  limiter,
	}
}

// NewLimiter returns a limiter allowing rps calls per second, nil when rps is 0.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Run refreshes every payment in a refreshable status, one at a time. A failing
// payment does not stop the run; all failures are reported to the notifier once
// and returned joined.
func (r *Refresher) Run(ctx context.Context) (Report, error) {
	ctx = logger.WithCallID(ctx)
	log := logger.FromCtx(ctx)

	var report Report
	payments, err := r.payments.ListByStatuses(ctx, payment.RefreshableStatuses...)
	if err != nil {
		return report, fmt.Errorf("failed to select payments for refresh: %w", err)
	}
	log.Info("status refresh started", zap.Int("payments", len(payments)))

	var errs []error
	for _, p := range payments {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				errs = append(errs, err)
				break
			}
		}

		report.Processed++
		if err := r.service.RefreshStatus(ctx, p); err != nil {
			report.Failed++
			errs = append(errs, err)
			metrics.RefreshedPayments.WithLabelValues("error").Inc()
			log.Warn("payment status refresh failed", zap.Int64("payment_id", p.ID), zap.Error(err))
			continue
		}
		metrics.RefreshedPayments.WithLabelValues("ok").Inc()
	}

	log.Info("status refresh finished",
		zap.Int("processed", report.Processed),
		zap.Int("failed", report.Failed),
	)

	if len(errs) == 0 {
		return report, nil
	}
	if err := r.notifier.NotifyFailures(ctx, errs); err != nil {
		log.Error("failed to deliver refresh failure notification", zap.Error(err))
	}
	return report, errors.Join(errs...)
}
