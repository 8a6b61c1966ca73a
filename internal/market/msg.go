package market

import (
	"context"

	"github.com/shopspring/decimal"

	mperrors "github.com/wyvernlabs/nft-marketplace/common/errors"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

// ExecuteMsg is the closed union of mutating marketplace requests. Exactly
// one variant must be set.
type ExecuteMsg struct {
	ListItems    *ListItemsMsg        `json:"list_items,omitempty"`
	DelistItems  *DelistItemsMsg      `json:"delist_items,omitempty"`
	UpdatePrice  *UpdatePriceMsg      `json:"update_price,omitempty"`
	UpdateConfig *models.ConfigUpdate `json:"update_config,omitempty"`
	Buy          *BuyMsg              `json:"buy,omitempty"`
	Receive      *models.AssetNotice  `json:"receive,omitempty"`
}

// ListItemsMsg lists or relists a batch of items.
type ListItemsMsg struct {
	Items []models.Item `json:"items" validate:"dive"`
}

// DelistItemsMsg takes the named items off sale.
type DelistItemsMsg struct {
	IDs []string `json:"ids"`
}

// UpdatePriceMsg overwrites one item's price.
type UpdatePriceMsg struct {
	TokenID string          `json:"token_id" validate:"required"`
	Price   decimal.Decimal `json:"price"`
}

// BuyMsg purchases one item with attached native funds.
type BuyMsg struct {
	TokenID   string        `json:"token_id" validate:"required"`
	Recipient string        `json:"recipient,omitempty" validate:"omitempty,addr"`
	Funds     []models.Coin `json:"funds"`
}

func (m ExecuteMsg) variants() int {
	n := 0
	for _, set := range []bool{
		m.ListItems != nil,
		m.DelistItems != nil,
		m.UpdatePrice != nil,
		m.UpdateConfig != nil,
		m.Buy != nil,
		m.Receive != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Execute dispatches a request union to its handler. caller is the validated
// identity of the external invoker; for Receive it is ignored because the
// notice itself names the originating ledger.
func (s *Service) Execute(ctx context.Context, caller string, msg ExecuteMsg) (models.Ack, error) {
	if msg.variants() != 1 {
		return models.Ack{}, mperrors.ErrWrongInput
	}
	switch {
	case msg.ListItems != nil:
		return s.ListItems(ctx, caller, msg.ListItems.Items)
	case msg.DelistItems != nil:
		return s.DelistItems(ctx, caller, msg.DelistItems.IDs)
	case msg.UpdatePrice != nil:
		return s.UpdatePrice(ctx, caller, msg.UpdatePrice.TokenID, msg.UpdatePrice.Price)
	case msg.UpdateConfig != nil:
		return s.UpdateConfig(ctx, caller, *msg.UpdateConfig)
	case msg.Buy != nil:
		return s.BuyNative(ctx, caller, msg.Buy.TokenID, msg.Buy.Recipient, msg.Buy.Funds)
	case msg.Receive != nil:
		return s.ReceiveAsset(ctx, *msg.Receive)
	default:
		return models.Ack{}, mperrors.ErrWrongInput
	}
}
