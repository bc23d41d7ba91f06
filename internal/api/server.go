package api

import (
	"net/http"

	"github.com/Himess/delreg/internal/api/middleware"
	"github.com/Himess/delreg/internal/audit"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/service"
	"github.com/Himess/delreg/internal/tasks"
)

type Server struct {
	delegations *service.DelegationService
	taskManager *tasks.Manager
	auditor     core.Auditor
}

func NewServer(
	delegations *service.DelegationService,
	taskManager *tasks.Manager,
	auditor core.Auditor,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	return &Server{
		delegations: delegations,
		taskManager: taskManager,
		auditor:     auditor,
	}
}

func (s *Server) Routes(adminSigningKey []byte) http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// delegation routes; the requesting identity comes from the
	// X-Requesting-Identity header set by the fronting auth layer
	mux.HandleFunc("POST "+GrantRoute, s.handleGrant)
	mux.HandleFunc("POST "+RevokeRoute, s.handleRevoke)
	mux.HandleFunc("GET "+ExpiryRoute, s.handleExpiry)
	mux.HandleFunc("GET "+ActiveRoute, s.handleActive)

	// admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+ListAuditsRoute, s.handleAdminAudit)
	adminMux.HandleFunc("GET "+ListDelegationsRoute, s.handleAdminDelegations)
	adminMux.HandleFunc("POST "+ExplainRoute, s.handleExplain)
	adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	mux.Handle(AdminParent, middleware.AdminAuth(adminSigningKey)(adminMux))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
