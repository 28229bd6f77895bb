package common

const (
	// AuthorizationHeaderName carries the bearer token on HTTP requests and
	// as gRPC metadata.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix is the exact, case-sensitive scheme prefix expected in the
	// authorization header.
	BearerPrefix = "Bearer "

	// ServiceName is reported by health endpoints.
	ServiceName = "account-service"
)
