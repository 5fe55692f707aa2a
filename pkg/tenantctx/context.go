package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Role describes what a caller may see across client boundaries.
type Role string

const (
	// RoleClient restricts every query to the caller's own client.
	RoleClient Role = "client"
	// RoleCrossClient is the administrative read-all role. It is the only
	// role that may receive rows belonging to more than one client, and
	// such responses must tag every row with its owning client.
	RoleCrossClient Role = "cross_client"
)

type clientIDKey struct{}
type roleKey struct{}

// WithClientID stores the authenticated client ID in the context.
func WithClientID(ctx context.Context, clientID snowflake.ID) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// WithRole stores the caller's tenancy role in the context.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// ClientID returns the client ID from context, if set.
func ClientID(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(clientIDKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, parsed != 0
		}
	}
	return 0, false
}

// RoleFromContext returns the caller's role, defaulting to RoleClient.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return RoleClient
	}
	if role, ok := ctx.Value(roleKey{}).(Role); ok && role != "" {
		return role
	}
	return RoleClient
}

// IsCrossClient reports whether the caller holds the cross-client role.
func IsCrossClient(ctx context.Context) bool {
	return RoleFromContext(ctx) == RoleCrossClient
}
