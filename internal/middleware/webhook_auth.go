package middleware

import (
	"errors"
	"net/http"
	"strings"

	"parcel-notifier/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// WebhookAuth проверяет Authorization: Bearer <JWT>, подписанный HS256 общим секретом
// (так подписывает свои ключи Supabase). При пустом secret проверка не выполняется.
func WebhookAuth(secret string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("webhook_auth")
	if secret == "" {
		log.Warn("WEBHOOK_JWT_SECRET не задан, вебхук принимается без проверки подписи")
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			log.Warn("Authorization header missing or malformed", zap.String("request_id", RequestID(c)))
			abortUnauthorized(c, "Unauthorized: missing bearer token")
			return
		}

		_, err := parser.Parse(strings.TrimSpace(tokenString), func(t *jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil {
			msg := "Unauthorized: invalid webhook token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Unauthorized: webhook token expired"
			}
			log.Warn("Webhook token verification failed", zap.Error(err), zap.String("request_id", RequestID(c)))
			abortUnauthorized(c, msg)
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.DispatchResult{Success: false, Error: msg})
}
