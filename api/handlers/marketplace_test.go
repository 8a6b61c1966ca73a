package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wyvernlabs/nft-marketplace/api"
	"github.com/wyvernlabs/nft-marketplace/internal/market"
	"github.com/wyvernlabs/nft-marketplace/internal/market/query"
	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	logger := zaptest.NewLogger(t)
	emitter := market.NewLogEmitter(logger)
	svc := market.New(st, emitter, emitter, logger)

	native := "uatom"
	_, err := svc.Initialize(context.Background(), models.Config{
		Admin:         "admin",
		RegistryAddr:  "registry",
		AllowedNative: &native,
		FeeRate:       decimal.RequireFromString("0.03"),
		CollectorAddr: "collector",
	})
	require.NoError(t, err)

	return api.NewServer(logger, svc, query.New(st)).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path, caller string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != "" {
		req.Header.Set("X-Caller-Address", caller)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListBuyQueryFlow(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/listings", "seller", gin.H{
		"items": []gin.H{{"id": "dragon1", "price": "100", "on_sale": true, "rarity": "epic", "owner": "seller"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/v1/tokens/dragon1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "dragon1")

	w = doJSON(t, router, http.MethodPost, "/v1/buy", "buyer", gin.H{
		"token_id": "dragon1",
		"funds":    []gin.H{{"denom": "uatom", "amount": "100"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var ack models.Ack
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	require.Equal(t, "buy_native", ack.Action)

	w = doJSON(t, router, http.MethodGet, "/v1/on-sale", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "dragon1")

	w = doJSON(t, router, http.MethodGet, "/v1/floor-prices", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMissingCallerIsRejected(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/listings", "", gin.H{"items": []gin.H{}})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestErrorMapping(t *testing.T) {
	router := newTestServer(t)

	// empty batch -> wrong input
	w := doJSON(t, router, http.MethodPost, "/v1/listings", "seller", gin.H{"items": []gin.H{}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown token -> not found
	w = doJSON(t, router, http.MethodGet, "/v1/tokens/missing", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// non-owner price update -> forbidden
	w = doJSON(t, router, http.MethodPost, "/v1/listings", "seller", gin.H{
		"items": []gin.H{{"id": "dragon1", "price": "100", "on_sale": true, "rarity": "epic", "owner": "seller"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPut, "/v1/listings/dragon1/price", "mallory", gin.H{"price": "1"})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestBindingValidation(t *testing.T) {
	router := newTestServer(t)

	// item without an owner never reaches the listing service
	w := doJSON(t, router, http.MethodPost, "/v1/listings", "seller", gin.H{
		"items": []gin.H{{"id": "dragon1", "price": "100", "on_sale": true, "rarity": "epic"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Owner")

	// whitespace in an address fails the addr rule
	w = doJSON(t, router, http.MethodPut, "/v1/config", "admin", gin.H{"admin": "two words"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// buy without a token id
	w = doJSON(t, router, http.MethodPost, "/v1/buy", "buyer", gin.H{
		"funds": []gin.H{{"denom": "uatom", "amount": "100"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// notice without a ledger address
	w = doJSON(t, router, http.MethodPost, "/v1/receive", "", gin.H{
		"sender": "buyer",
		"amount": "100",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteRejectsMultipleVariants(t *testing.T) {
	router := newTestServer(t)

	w := doJSON(t, router, http.MethodPost, "/v1/execute", "seller", gin.H{
		"delist_items": gin.H{"ids": []string{"dragon1"}},
		"update_price": gin.H{"token_id": "dragon1", "price": "1"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveEndpointRejectsUnknownLedger(t *testing.T) {
	router := newTestServer(t)

	instr, _ := json.Marshal(gin.H{"recipient": "buyer", "token_id": "dragon1"})
	w := doJSON(t, router, http.MethodPost, "/v1/receive", "", gin.H{
		"ledger_addr": "tokenledger",
		"sender":      "buyer",
		"amount":      "100",
		"msg":         instr,
	})
	// marketplace is configured for native payment only
	require.Equal(t, http.StatusBadRequest, w.Code)
}
