package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AbelardoOk/PlanTracker/internal/modules/handler"
	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/utils/tokens"
)

// SessionAuth returns a middleware that authenticates requests using session bearer tokens.
// It resolves the token to its session and sets it in the context as the actor.
// It also sets the user_id attribute on the current span for telemetry filtering.
func SessionAuth(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "session_auth",
			trace.WithAttributes(attribute.String("middleware", "session_auth")))

		raw, ok := tokens.FromAuthorization(c.GetHeader("Authorization"))
		if !ok {
			authSpan.SetAttributes(attribute.Bool("authenticated", false))
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
			return
		}

		sess, err := users.Authenticate(ctx, raw)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				authSpan.SetAttributes(attribute.Bool("authenticated", false))
				authSpan.End()
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Unauthorized"))
				return
			}
			authSpan.RecordError(err)
			authSpan.End()
			c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.Err(http.StatusInternalServerError, "session store error", err))
			return
		}

		rootSpan := trace.SpanFromContext(c.Request.Context())
		if rootSpan.SpanContext().IsValid() {
			rootSpan.SetAttributes(attribute.String("user_id", sess.UserID.String()))
		}

		authSpan.SetAttributes(
			attribute.String("user_id", sess.UserID.String()),
			attribute.Bool("authenticated", true),
		)
		authSpan.End()

		c.Set(handler.ActorKey, sess)
		c.Next()
	}
}
