package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/about"

	GrantRoute  = "/v1/delegations/grant"
	RevokeRoute = "/v1/delegations/revoke"
	ExpiryRoute = "/v1/delegations/expiry"
	ActiveRoute = "/v1/delegations/active"

	AdminParent          = "/v1/admin/"
	ListAuditsRoute      = AdminParent + "audits"
	ListDelegationsRoute = AdminParent + "delegations"
	ExplainRoute         = AdminParent + "explain"

	TaskParent       = AdminParent + "tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)
