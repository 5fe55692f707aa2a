package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/plantpulse/plantpulse/internal/auth/token"
	clientdomain "github.com/plantpulse/plantpulse/internal/client/domain"
	obscontext "github.com/plantpulse/plantpulse/internal/observability/context"
	"github.com/plantpulse/plantpulse/pkg/tenantctx"
)

const (
	headerClientID  = "X-Client-ID"
	headerAPIToken  = "X-API-Token"
	headerTenantAll = "X-Tenant-Scope"
)

// ClientContext resolves the calling client from headers and pins the
// request context to it. Every /api route runs behind this; a request
// without a valid client never reaches a handler.
func (s *Server) ClientContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerClientID))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		resolved, err := s.clientSvc.GetByID(ctx, clientdomain.GetClientRequest{ID: raw})
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !resolved.Active {
			AbortWithError(c, ErrForbidden)
			return
		}
		if resolved.APITokenHash != "" {
			presented := strings.TrimSpace(c.GetHeader(headerAPIToken))
			if presented == "" || !token.Verify(presented, resolved.APITokenHash) {
				AbortWithError(c, ErrUnauthorized)
				return
			}
		}

		ctx = tenantctx.WithClientID(ctx, resolved.ID)
		ctx = tenantctx.WithRole(ctx, tenantctx.RoleClient)
		ctx = obscontext.WithClientID(ctx, resolved.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CrossClientRequired gates the admin surface. The registry endpoints
// return rows from every client, so the caller must explicitly claim the
// cross-client scope; authentication of that claim is delegated to the
// deployment's edge.
func (s *Server) CrossClientRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := strings.TrimSpace(c.GetHeader(headerTenantAll))
		if scope != string(tenantctx.RoleCrossClient) {
			AbortWithError(c, ErrForbidden)
			return
		}

		ctx := tenantctx.WithRole(c.Request.Context(), tenantctx.RoleCrossClient)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
