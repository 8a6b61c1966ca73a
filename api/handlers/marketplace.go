// Package handlers contains the HTTP request handlers for the marketplace
// API. The caller identity arrives pre-validated in the X-Caller-Address
// header; authentication itself is handled upstream.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mperrors "github.com/wyvernlabs/nft-marketplace/common/errors"
	"github.com/wyvernlabs/nft-marketplace/internal/market"
	"github.com/wyvernlabs/nft-marketplace/internal/market/query"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
	"github.com/wyvernlabs/nft-marketplace/pkg/validation"
)

const callerHeader = "X-Caller-Address"

// Handler binds the marketplace services to gin routes.
type Handler struct {
	svc    *market.Service
	qry    *query.Service
	logger *zap.Logger
}

// New creates a Handler.
func New(svc *market.Service, qry *query.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, qry: qry, logger: logger.Named("api")}
}

// Register attaches all marketplace routes to the group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.POST("/execute", h.execute)

	g.POST("/listings", h.listItems)
	g.DELETE("/listings", h.delistItems)
	g.PUT("/listings/:id/price", h.updatePrice)

	g.POST("/buy", h.buyNative)
	g.POST("/receive", h.receiveAsset)

	g.GET("/config", h.config)
	g.PUT("/config", h.updateConfig)

	// Static token sub-paths would collide with the :id wildcard, so the
	// sale/sort/filter projections live at the group root.
	g.GET("/tokens", h.rangeTokens)
	g.GET("/tokens/:id", h.token)
	g.POST("/tokens/lookup", h.lookupTokens)
	g.GET("/on-sale", h.tokensOnSale)
	g.GET("/on-sale/count", h.listedSize)
	g.GET("/by-price-asc", h.byPriceAsc)
	g.GET("/by-price-desc", h.byPriceDesc)
	g.GET("/by-rarity", h.byRarity)
	g.GET("/by-rarity-asc", h.byRarityAsc)
	g.GET("/by-rarity-desc", h.byRarityDesc)
	g.GET("/by-owner", h.byOwner)
	g.GET("/owners/:owner/listed", h.listedByOwner)
	g.GET("/floor-prices", h.floorPrices)
}

func (h *Handler) caller(c *gin.Context) (string, bool) {
	caller := c.GetHeader(callerHeader)
	if caller == "" {
		mperrors.Abort(c, mperrors.ErrUnauthorized)
		return "", false
	}
	return caller, true
}

// bind decodes the request body into out and runs the struct validator over
// its `validate` tags. On failure it aborts the request with 400.
func bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		mperrors.Abort(c, mperrors.ErrWrongInput)
		return false
	}
	if err := validation.Struct(out); err != nil {
		mperrors.Abort(c, fmt.Errorf("%v: %w", err, mperrors.ErrWrongInput))
		return false
	}
	return true
}

func (h *Handler) execute(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var msg market.ExecuteMsg
	if !bind(c, &msg) {
		return
	}
	ack, err := h.svc.Execute(c.Request.Context(), caller, msg)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) listItems(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req market.ListItemsMsg
	if !bind(c, &req) {
		return
	}
	ack, err := h.svc.ListItems(c.Request.Context(), caller, req.Items)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) delistItems(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req market.DelistItemsMsg
	if !bind(c, &req) {
		return
	}
	ack, err := h.svc.DelistItems(c.Request.Context(), caller, req.IDs)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) updatePrice(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if !bind(c, &req) {
		return
	}
	ack, err := h.svc.UpdatePrice(c.Request.Context(), caller, c.Param("id"), req.Price)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) updateConfig(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var upd models.ConfigUpdate
	if !bind(c, &upd) {
		return
	}
	ack, err := h.svc.UpdateConfig(c.Request.Context(), caller, upd)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) buyNative(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req market.BuyMsg
	if !bind(c, &req) {
		return
	}
	ack, err := h.svc.BuyNative(c.Request.Context(), caller, req.TokenID, req.Recipient, req.Funds)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) receiveAsset(c *gin.Context) {
	var notice models.AssetNotice
	if !bind(c, &notice) {
		return
	}
	ack, err := h.svc.ReceiveAsset(c.Request.Context(), notice)
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *Handler) config(c *gin.Context) {
	cfg, err := h.qry.Config()
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

func (h *Handler) token(c *gin.Context) {
	it, err := h.qry.Token(c.Param("id"))
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": it})
}

func pageParams(c *gin.Context) (string, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	return c.Query("start_after"), limit
}

func priceCursor(c *gin.Context) decimal.Decimal {
	cursor, err := decimal.NewFromString(c.Query("start_after"))
	if err != nil {
		return decimal.Zero
	}
	return cursor
}

func writeTokens(c *gin.Context, items []models.Item, err error) {
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": items})
}

func (h *Handler) rangeTokens(c *gin.Context) {
	startAfter, limit := pageParams(c)
	items, err := h.qry.RangeTokens(startAfter, limit)
	writeTokens(c, items, err)
}

func (h *Handler) lookupTokens(c *gin.Context) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !bind(c, &req) {
		return
	}
	items, err := h.qry.ListTokens(req.IDs)
	writeTokens(c, items, err)
}

func (h *Handler) tokensOnSale(c *gin.Context) {
	startAfter, limit := pageParams(c)
	items, err := h.qry.ListTokensOnSale(startAfter, limit)
	writeTokens(c, items, err)
}

func (h *Handler) listedSize(c *gin.Context) {
	n, err := h.qry.ListedSize(c.Query("start_after"))
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *Handler) byPriceAsc(c *gin.Context) {
	_, limit := pageParams(c)
	items, err := h.qry.ListByPriceAsc(priceCursor(c), limit)
	writeTokens(c, items, err)
}

func (h *Handler) byPriceDesc(c *gin.Context) {
	_, limit := pageParams(c)
	items, err := h.qry.ListByPriceDesc(priceCursor(c), limit)
	writeTokens(c, items, err)
}

func (h *Handler) byRarity(c *gin.Context) {
	startAfter, limit := pageParams(c)
	items, err := h.qry.ListByRarity(startAfter, limit, c.QueryArray("rarity"))
	writeTokens(c, items, err)
}

func (h *Handler) byRarityAsc(c *gin.Context) {
	startAfter, limit := pageParams(c)
	items, err := h.qry.ListByRarityAsc(startAfter, limit, c.QueryArray("rarity"))
	writeTokens(c, items, err)
}

func (h *Handler) byRarityDesc(c *gin.Context) {
	startAfter, limit := pageParams(c)
	items, err := h.qry.ListByRarityDesc(startAfter, limit, c.QueryArray("rarity"))
	writeTokens(c, items, err)
}

func (h *Handler) byOwner(c *gin.Context) {
	startAfter, limit := pageParams(c)
	items, err := h.qry.ListByOwner(startAfter, limit, c.Query("owner"))
	writeTokens(c, items, err)
}

func (h *Handler) listedByOwner(c *gin.Context) {
	items, err := h.qry.ListedTokensByOwner(c.Param("owner"))
	writeTokens(c, items, err)
}

func (h *Handler) floorPrices(c *gin.Context) {
	fp, err := h.qry.FloorPrices()
	if err != nil {
		mperrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, fp)
}
