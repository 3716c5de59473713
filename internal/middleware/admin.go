package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/solstrike/chipgate/internal/config"
)

const HeaderAdminKey = "X-Admin-Key"

// ContextCallerKey holds the ledger identity of the authenticated caller,
// set by AdminMiddleware (the configured admin address) or AuthMiddleware
// (the account address). Services check this identity against the
// authority policy.
const ContextCallerKey = "caller_address"

func AdminMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg == nil || cfg.Auth.AdminKey == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin key not configured"})
			c.Abort()
			return
		}
		if c.GetHeader(HeaderAdminKey) != cfg.Auth.AdminKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}
		c.Set(ContextCallerKey, common.HexToAddress(cfg.Auth.AdminAddress))
		c.Next()
	}
}

// CallerAddress extracts the authenticated ledger identity.
func CallerAddress(c *gin.Context) (common.Address, bool) {
	val, ok := c.Get(ContextCallerKey)
	if !ok {
		return common.Address{}, false
	}
	addr, ok := val.(common.Address)
	return addr, ok
}
