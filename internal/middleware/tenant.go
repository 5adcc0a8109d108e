package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahpet/shortener/internal/model"
)

const namespaceKey = "namespace"

// NamespaceResolver classifies a request host into a slug namespace.
type NamespaceResolver interface {
	ResolveNamespace(ctx context.Context, host string) (model.Namespace, error)
}

// Tenant resolves the request host to its namespace and rejects hosts the
// application does not serve. Handlers downstream read the namespace with
// NamespaceFrom.
func Tenant(resolver NamespaceResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ns, err := resolver.ResolveNamespace(c.Request.Context(), c.Request.Host)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
				Error: "internal_error",
			})
			return
		}
		if ns.Kind == model.NamespaceUnknown {
			c.AbortWithStatusJSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "domain_not_found",
				Message: "this domain is not configured",
			})
			return
		}

		c.Set(namespaceKey, ns)
		c.Next()
	}
}

// PrimaryOnly rejects requests that reach management routes through a
// custom domain. Custom domains serve slug resolution, nothing else.
func PrimaryOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if NamespaceFrom(c).Kind != model.NamespacePrimary {
			c.AbortWithStatusJSON(http.StatusNotFound, model.ErrorResponse{
				Error: "not_found",
			})
			return
		}
		c.Next()
	}
}

// NamespaceFrom returns the namespace stored by Tenant, defaulting to
// Unknown when the middleware did not run.
func NamespaceFrom(c *gin.Context) model.Namespace {
	if v, ok := c.Get(namespaceKey); ok {
		if ns, ok := v.(model.Namespace); ok {
			return ns
		}
	}
	return model.Unknown()
}
