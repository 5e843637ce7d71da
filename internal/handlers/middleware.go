package handlers

import (
	"net/http"
	"time"

	"coffeeRelay/internal/errs"
	"coffeeRelay/internal/models"
	"coffeeRelay/internal/msgs"
	"coffeeRelay/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) MustAuthenticateMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !h.AuthEnabled() {
			ctx.Next()
			return
		}

		jwtToken := utils.TokenFromRequest(ctx)
		if jwtToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustLoginFirst,
				Errors:  models.ErrorMessages(errs.ErrUnauthorized),
			})
			return
		}

		claims, err := utils.VerifyToken(jwtToken, h.jwtSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				Success: false,
				Message: msgs.MsgYouMustLoginFirst,
				Errors:  models.ErrorMessages(errs.ErrUnauthorized),
			})
			return
		}

		ctx.Set(claimsContextKey, claims)
		ctx.Set("user_id", claims.UserID)
		ctx.Set("authenticated", true)
		ctx.Next()
	}
}

// MustHaveRoleMiddleware runs after MustAuthenticateMiddleware.
func (h *Handler) MustHaveRoleMiddleware(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !h.AuthEnabled() {
			ctx.Next()
			return
		}

		claims, ok := ClaimsFromContext(ctx)
		if !ok || claims.Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, models.Response{
				Success: false,
				Message: msgs.MsgOperationFailed,
				Errors:  models.ErrorMessages(errs.ErrForbidden),
			})
			return
		}
		ctx.Next()
	}
}

func (h *Handler) RequestLoggerMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		h.logger.Info("request",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ctx.ClientIP()),
		)
	}
}
