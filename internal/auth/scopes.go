package auth

// Known OAuth scopes used by the adapter.
const (
	ScopeOmhRead  = "omh:read"
	ScopeOmhWrite = "omh:write"
)
