// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	formsfeature "github.com/dalemusser/projecthub/internal/app/features/forms"
	healthfeature "github.com/dalemusser/projecthub/internal/app/features/health"
	projectgroupsfeature "github.com/dalemusser/projecthub/internal/app/features/projectgroups"
	studentsfeature "github.com/dalemusser/projecthub/internal/app/features/students"
	"github.com/dalemusser/projecthub/internal/app/system/httpjson"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. ProjectHub mounts the JSON API:
// health, registration (project-groups), form administration, and the
// student directory.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Fail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration workflow
	groupsHandler := projectgroupsfeature.NewHandler(deps.MongoClient, deps.MongoDatabase, logger)
	r.Mount("/project-groups", projectgroupsfeature.Routes(groupsHandler))

	// Form administration
	formsHandler := formsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/project-forms", formsfeature.Routes(formsHandler))

	// Student directory
	studentsHandler := studentsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/students", studentsfeature.Routes(studentsHandler))

	return r, nil
}
