package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/solstrike/chipgate/internal/middleware"
	"github.com/solstrike/chipgate/internal/model"
	"github.com/solstrike/chipgate/internal/pkg/apperrors"
	"github.com/solstrike/chipgate/internal/registry"
)

type PriceHandler struct {
	registry *registry.Registry
}

func NewPriceHandler(reg *registry.Registry) *PriceHandler {
	return &PriceHandler{registry: reg}
}

// List serves the full price table.
func (h *PriceHandler) List(c *gin.Context) {
	resp, err := h.registry.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Init creates the singleton native price config.
func (h *PriceHandler) Init(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.InitPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unitPrice, err := resolveUnitPrice(req.UnitPrice, req.UnitPriceDecimal)
	if err != nil {
		c.Error(err)
		return
	}

	cfg, err := h.registry.Initialize(c.Request.Context(), caller, unitPrice)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "unit_price", unitPrice)
	c.JSON(http.StatusCreated, cfg)
}

// SetNative overwrites the native chip price.
func (h *PriceHandler) SetNative(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unitPrice, err := resolveUnitPrice(req.UnitPrice, req.UnitPriceDecimal)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.registry.SetUnitPrice(c.Request.Context(), caller, unitPrice); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "unit_price", unitPrice)
	c.JSON(http.StatusOK, gin.H{"unit_price": unitPrice})
}

// RegisterAsset adds a price entry for a new payment asset.
func (h *PriceHandler) RegisterAsset(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	var req model.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unitPrice, err := resolveUnitPrice(req.UnitPrice, req.UnitPriceDecimal)
	if err != nil {
		c.Error(err)
		return
	}

	entry, err := h.registry.RegisterAsset(c.Request.Context(), caller, req.AssetID, unitPrice)
	if err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "asset_id", req.AssetID)
	middleware.AddAuditContext(c, "unit_price", unitPrice)
	c.JSON(http.StatusCreated, entry)
}

// RepriceAsset overwrites the price of a registered asset.
func (h *PriceHandler) RepriceAsset(c *gin.Context) {
	caller, ok := middleware.CallerAddress(c)
	if !ok {
		c.Error(apperrors.New(apperrors.ErrUnauthorized, "missing caller identity", nil))
		return
	}

	assetID := c.Param("id")
	if assetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset id is required"})
		return
	}

	var req model.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unitPrice, err := resolveUnitPrice(req.UnitPrice, req.UnitPriceDecimal)
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.registry.RepriceAsset(c.Request.Context(), caller, assetID, unitPrice); err != nil {
		middleware.AddAuditContext(c, "error", err.Error())
		c.Error(err)
		return
	}

	middleware.AddAuditContext(c, "asset_id", assetID)
	middleware.AddAuditContext(c, "unit_price", unitPrice)
	c.JSON(http.StatusOK, gin.H{"asset_id": assetID, "unit_price": unitPrice})
}

// resolveUnitPrice picks the minor-unit price, converting a decimal display
// price ("0.01") exactly when one is given.
func resolveUnitPrice(unitPrice uint64, display string) (uint64, error) {
	if display == "" {
		return unitPrice, nil
	}
	d, err := decimal.NewFromString(display)
	if err != nil {
		return 0, apperrors.NewInvalidRequest("invalid decimal price: " + err.Error())
	}
	minor := d.Shift(model.ChipDecimals)
	if !minor.IsInteger() || minor.IsNegative() {
		return 0, apperrors.NewInvalidRequest("price is not a whole number of minor units")
	}
	bi := minor.BigInt()
	if !bi.IsUint64() {
		return 0, apperrors.New(apperrors.ErrOverflow, "price exceeds uint64", nil)
	}
	return bi.Uint64(), nil
}
