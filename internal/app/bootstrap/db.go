// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/projecthub/internal/app/system/indexes"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// EnsureSchema creates the indexes the service depends on: the unique
// constraints backing duplicate detection (student IDs, form names, one
// ledger per form) and the listing indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}
