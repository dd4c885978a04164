package auth

import (
	"AI-Content-Creator-Backend/internal/logging"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const InitDataHeader = "X-Telegram-Init-Data"

// UserIDKey holds the verified Telegram user id in the gin context.
const UserIDKey = "telegram_user_id"

// RequireInitData rejects requests without valid Telegram init data.
func RequireInitData(v *InitDataValidator) gin.HandlerFunc {
	log := logging.Named("auth")
	return func(c *gin.Context) {
		userID, err := v.Validate(c.GetHeader(InitDataHeader))
		if err != nil {
			log.Warn("init data rejected", zap.String("path", c.FullPath()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "بيانات تليجرام غير صالحة."})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// VerifiedUserID returns the user id set by RequireInitData, if any.
func VerifiedUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
