package handlers

import (
	"net/http"

	"coffeeRelay/internal/models"
	"coffeeRelay/internal/msgs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsContextKey = "claims"

// Handler carries what every route group shares: the JWT secret and the
// logger. An empty secret turns authentication off.
type Handler struct {
	jwtSecret []byte
	logger    *zap.Logger
}

func NewHandler(jwtSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

func (h *Handler) AuthEnabled() bool {
	return len(h.jwtSecret) > 0
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  models.Response
// @Router       /health [get]
func (h *Handler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: msgs.MsgOperationSuccessful,
	})
}

// ClaimsFromContext returns the verified claims, if the request carried any.
func ClaimsFromContext(ctx *gin.Context) (*models.Claims, bool) {
	value, exists := ctx.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.Claims)
	return claims, ok
}
