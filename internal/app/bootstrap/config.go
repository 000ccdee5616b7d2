// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ProjectHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, form_sweep_interval, etc.
//   - Environment variables: PROJECTHUB_MONGO_URI, PROJECTHUB_FORM_SWEEP_INTERVAL, etc.
//   - Command-line flags: --mongo_uri, --form_sweep_interval, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "project_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Registration behavior
	{Name: "registration_txn_timeout", Default: "15s", Desc: "Deadline for one registration commit (e.g., 15s, 1m)"},

	// Background sweeps
	{Name: "form_sweep_interval", Default: "1h", Desc: "How often expired forms are deactivated"},
	{Name: "index_reconcile_interval", Default: "6h", Desc: "How often the derived form index is rebuilt from the registration log"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, PROJECTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PROJECTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RegistrationTxnTimeout: appValues.Duration("registration_txn_timeout", 15*time.Second),

		FormSweepInterval:      appValues.Duration("form_sweep_interval", time.Hour),
		IndexReconcileInterval: appValues.Duration("index_reconcile_interval", 6*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// ProjectHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.RegistrationTxnTimeout <= 0 {
		return fmt.Errorf("registration_txn_timeout must be positive")
	}
	if appCfg.FormSweepInterval <= 0 || appCfg.IndexReconcileInterval <= 0 {
		return fmt.Errorf("sweep intervals must be positive")
	}

	return nil
}
