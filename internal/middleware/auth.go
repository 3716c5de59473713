package middleware

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/solstrike/chipgate/internal/config"
	"github.com/solstrike/chipgate/internal/service"
)

const (
	HeaderGatewayKey  = "X-Gateway-Key"
	ContextAccountKey = "account"
)

func AuthMiddleware(cfg *config.Config, am *service.AccountManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderGatewayKey)
		if apiKey == "" {
			if cfg != nil && !cfg.Auth.RequireAPIKey {
				if account := am.DefaultAccount(); account != nil {
					setAccount(c, account.Address, account)
					c.Next()
					return
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		account, ok := am.GetByApiKeyWithFallback(c.Request.Context(), apiKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		setAccount(c, account.Address, account)
		c.Next()
	}
}

func setAccount(c *gin.Context, address string, account any) {
	c.Set(ContextAccountKey, account)
	c.Set(ContextCallerKey, common.HexToAddress(address))
}
