package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/solstrike/chipgate/internal/exchange"
	"github.com/solstrike/chipgate/internal/middleware"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/apperrors"
)

type ExchangeHandler struct {
	engine *exchange.Engine
}

func NewExchangeHandler(engine *exchange.Engine) *ExchangeHandler {
	return &ExchangeHandler{engine: engine}
}

// Buy converts a payment into chips for the calling account.
func (h *ExchangeHandler) Buy(c *gin.Context) {
	account, ok := callerAccount(c)
	if !ok {
		return
	}

	var req model.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.engine.Buy(c.Request.Context(), common.HexToAddress(account.Address), req.Amount, req.AssetID)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "side", "buy")
	middleware.AddAuditContext(c, "total", receipt.Total)
	c.JSON(http.StatusOK, receipt)
}

// Sell redeems the calling account's chips for the native currency.
func (h *ExchangeHandler) Sell(c *gin.Context) {
	account, ok := callerAccount(c)
	if !ok {
		return
	}

	var req model.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.engine.Sell(c.Request.Context(), common.HexToAddress(account.Address), req.Amount)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "side", "sell")
	middleware.AddAuditContext(c, "total", receipt.Total)
	c.JSON(http.StatusOK, receipt)
}

// Reserve moves the calling account's chips into treasury custody.
func (h *ExchangeHandler) Reserve(c *gin.Context) {
	account, ok := callerAccount(c)
	if !ok {
		return
	}

	var req model.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := h.engine.Reserve(c.Request.Context(), common.HexToAddress(account.Address), req.Amount)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "side", "reserve")
	c.JSON(http.StatusOK, receipt)
}

// callerAccount pulls the authenticated account and validates its address.
func callerAccount(c *gin.Context) (*model.Account, bool) {
	accountVal, exists := c.Get(middleware.ContextAccountKey)
	if !exists {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing account context", nil))
		return nil, false
	}
	account := accountVal.(*model.Account)
	if !common.IsHexAddress(account.Address) {
		c.Error(apperrors.NewInvalidRequest("account has no valid ledger address"))
		return nil, false
	}
	return account, true
}
