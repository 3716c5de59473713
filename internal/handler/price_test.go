package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/solstrike/chipgate/internal/authority"
	"github.com/solstrike/chipgate/internal/config"
	"github.com/solstrike/chipgate/internal/middleware"
	"github.com/solstrike/chipgate/internal/registry"
)

const testAdminAddr = "0x00000000000000000000000000000000000000AD"

func newPriceRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			AdminKey:     "admin",
			AdminAddress: testAdminAddr,
		},
	}

	reg := registry.New(registry.NewInMemStore(), authority.NewStaticKey(common.HexToAddress(testAdminAddr)))
	handler := NewPriceHandler(reg)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/v1/prices", handler.List)
	admin := router.Group("/v1/admin")
	admin.Use(middleware.AdminMiddleware(cfg))
	admin.POST("/prices/init", handler.Init)
	admin.PUT("/prices/native", handler.SetNative)
	return router, reg
}

func TestInitPriceRequiresAdminKey(t *testing.T) {
	router, _ := newPriceRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"unit_price": 10_000_000})

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/prices/init", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without admin key, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/v1/admin/prices/init", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set(middleware.HeaderAdminKey, "admin")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusCreated {
		t.Fatalf("expected 201 with admin key, got %d: %s", rec2.Code, rec2.Body.String())
	}

	var cfg map[string]interface{}
	if err := json.Unmarshal(rec2.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if cfg["unit_price"] != float64(10_000_000) {
		t.Fatalf("unexpected unit price: %v", cfg["unit_price"])
	}
}

func TestInitPriceTwiceConflicts(t *testing.T) {
	router, _ := newPriceRouter(t)

	body, _ := json.Marshal(map[string]interface{}{"unit_price": 10_000_000})
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/v1/admin/prices/init", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderAdminKey, "admin")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("attempt %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestSetNativePriceDecimal(t *testing.T) {
	router, reg := newPriceRouter(t)

	initBody, _ := json.Marshal(map[string]interface{}{"unit_price": 10_000_000})
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/prices/init", bytes.NewReader(initBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAdminKey, "admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("init failed: %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]interface{}{"unit_price_decimal": "0.02"})
	req2 := httptest.NewRequest(http.MethodPut, "/v1/admin/prices/native", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set(middleware.HeaderAdminKey, "admin")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec2.Code, rec2.Body.String())
	}

	price, err := reg.UnitPrice(req2.Context(), "")
	if err != nil {
		t.Fatalf("price lookup failed: %v", err)
	}
	if price != 20_000_000 {
		t.Fatalf("expected 20000000 minor units, got %d", price)
	}
}

func TestResolveUnitPriceRejectsSubMinor(t *testing.T) {
	if _, err := resolveUnitPrice(0, "0.0000000001"); err == nil {
		t.Fatalf("expected rejection of sub-minor-unit price")
	}
}
