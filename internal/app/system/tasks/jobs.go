// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/projecthub/internal/app/registration"
	formstore "github.com/dalemusser/projecthub/internal/app/store/forms"
	"go.uber.org/zap"
)

// FormDeactivationJob creates a job that flips is_active off for forms
// whose end date has passed. The registration path also checks the end
// date directly, so this sweep only keeps listings honest.
func FormDeactivationJob(forms *formstore.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "form-deactivation",
		Interval: interval,
		Run: func(ctx context.Context) error {
			count, err := forms.DeactivateExpired(ctx, time.Now().UTC())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("deactivated expired forms", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// FormIndexReconcileJob creates a job that rebuilds the derived per-form
// project index from the registration log, repairing any drift left by
// best-effort index updates.
func FormIndexReconcileJob(mgr *registration.Manager, interval time.Duration) Job {
	return Job{
		Name:     "form-index-reconcile",
		Interval: interval,
		Run:      mgr.ReconcileFormIndexes,
	}
}
