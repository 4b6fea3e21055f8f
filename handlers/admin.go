package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"aira/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exchanges the admin API key for a short-lived token.
type AdminHandler struct {
	apiKey string
	ttl    time.Duration
	logger *zap.Logger
}

func NewAdminHandler(apiKey string, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{apiKey: apiKey, ttl: utils.AdminTokenTTL, logger: logger}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var body struct {
		APIKey string `json:"apiKey" binding:"required"`
		Name   string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login request", "apiKey is required")
		return
	}
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(body.APIKey), []byte(h.apiKey)) != 1 {
		utils.JSONError(c, http.StatusUnauthorized, "Invalid credentials", "")
		return
	}

	subject := body.Name
	if subject == "" {
		subject = "admin"
	}
	token, err := utils.GenerateToken(subject, utils.AdminRole, h.ttl)
	if err != nil {
		h.logger.Error("failed to issue admin token", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to issue token", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": time.Now().Add(h.ttl).UTC(),
	})
}

// Health reports the latest dependency checks.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code, label := http.StatusOK, "healthy"
	if !status.Healthy {
		code, label = http.StatusServiceUnavailable, "unhealthy"
	}
	c.JSON(code, gin.H{
		"status":    label,
		"checks":    status.Checks,
		"checkedAt": status.CheckedAt,
	})
}
