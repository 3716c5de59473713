package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/solstrike/chipgate/internal/middleware"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/apperrors"
	"github.com/solstrike/chipgate/internal/rewards"
)

type RewardHandler struct {
	ledger *rewards.Ledger
}

func NewRewardHandler(ledger *rewards.Ledger) *RewardHandler {
	return &RewardHandler{ledger: ledger}
}

// Distribute credits placement bonuses to the given recipients, first place
// first.
func (h *RewardHandler) Distribute(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipients := make([]common.Address, 0, len(req.Recipients))
	for _, raw := range req.Recipients {
		if !common.IsHexAddress(raw) {
			c.Error(apperrors.NewInvalidRequest("invalid recipient address: " + raw))
			return
		}
		recipients = append(recipients, common.HexToAddress(raw))
	}

	resp, err := h.ledger.Distribute(c.Request.Context(), caller, recipients)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "round_id", resp.RoundID)
	middleware.AddAuditContext(c, "recipients", len(recipients))
	c.JSON(http.StatusOK, resp)
}

// Claim pays out the calling account's pending balance.
func (h *RewardHandler) Claim(c *gin.Context) {
	account, ok := callerAccount(c)
	if !ok {
		return
	}
	recipient := common.HexToAddress(account.Address)

	claimed, err := h.ledger.Claim(c.Request.Context(), recipient)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "claimed", claimed)
	c.JSON(http.StatusOK, model.ClaimResponse{Recipient: recipient.Hex(), Claimed: claimed})
}

// Pending reports the calling account's claimable balance.
func (h *RewardHandler) Pending(c *gin.Context) {
	account, ok := callerAccount(c)
	if !ok {
		return
	}
	recipient := common.HexToAddress(account.Address)

	amount, err := h.ledger.Pending(c.Request.Context(), recipient)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient": recipient.Hex(), "pending": amount})
}
