// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/projecthub/internal/app/registration"
	formstore "github.com/dalemusser/projecthub/internal/app/store/forms"
	"github.com/dalemusser/projecthub/internal/app/system/tasks"
	"github.com/dalemusser/projecthub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// taskRunner is started here and stopped in Shutdown.
var taskRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// It applies the configured operation timeouts and launches the
// background sweeps.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Txn: appCfg.RegistrationTxnTimeout})

	mgr := registration.NewManager(deps.MongoClient, deps.MongoDatabase, logger)
	forms := formstore.New(deps.MongoDatabase)

	taskRunner = tasks.NewRunner(logger,
		tasks.FormDeactivationJob(forms, logger, appCfg.FormSweepInterval),
		tasks.FormIndexReconcileJob(mgr, appCfg.IndexReconcileInterval),
	)
	taskRunner.Start(context.Background())

	logger.Info("background jobs started",
		zap.Duration("form_sweep_interval", appCfg.FormSweepInterval),
		zap.Duration("index_reconcile_interval", appCfg.IndexReconcileInterval))
	return nil
}
