package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	commissionapp "github.com/marketplace/backend/internal/application/commission"
	slaapp "github.com/marketplace/backend/internal/application/sla"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDateRangeValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	commissionHandler := NewCommissionHandler(
		commissionapp.NewCommissionService(nil, decimal.Zero),
		cache.NopStoreDirectory{},
	)
	slaHandler := NewSlaHandler(slaapp.NewSlaService(nil, nil, zap.NewNop()))
	engine.GET("/stores/:storeId/commission-summary", commissionHandler.SellerSummary)
	engine.GET("/stores/:storeId/sla-statistics", slaHandler.StoreStatistics)

	storeID := uuid.NewString()

	cases := []struct {
		name string
		url  string
	}{
		{"summary rejects malformed from", "/stores/" + storeID + "/commission-summary?from=not-a-date&to=2026-01-31"},
		{"summary rejects malformed to", "/stores/" + storeID + "/commission-summary?from=2026-01-01&to=31-01-2026"},
		{"summary rejects missing range", "/stores/" + storeID + "/commission-summary"},
		{"statistics rejects malformed from", "/stores/" + storeID + "/sla-statistics?from=2026-13-40&to=2026-01-31"},
		{"statistics rejects missing to", "/stores/" + storeID + "/sla-statistics?from=2026-01-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			engine.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
