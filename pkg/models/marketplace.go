package models

import (
	"github.com/shopspring/decimal"
)

// Item represents a listable unit tracked by the marketplace. The owner field
// is the marketplace's own view of the listing owner and may differ from the
// external registry's token owner until the next settlement reconciles them.
type Item struct {
	ID     string          `json:"id" validate:"required"`
	Price  decimal.Decimal `json:"price"`
	OnSale bool            `json:"on_sale"`
	Rarity string          `json:"rarity"`
	Owner  string          `json:"owner" validate:"required,addr"`
}

// Rarity classes recognized by the floor-price aggregate. Items may carry any
// rarity tag, but only these classes are reported.
var RarityClasses = []string{"common", "uncommon", "rare", "epic", "legendary"}

// Config is the marketplace singleton configuration. Exactly one of
// AllowedNative / AllowedAsset is set; it selects the legal payment path.
type Config struct {
	Admin         string          `json:"admin" validate:"required,addr"`
	RegistryAddr  string          `json:"registry_addr" validate:"required,addr"`
	AllowedNative *string         `json:"allowed_native,omitempty"`
	AllowedAsset  *string         `json:"allowed_asset,omitempty" validate:"omitempty,addr"`
	FeeRate       decimal.Decimal `json:"fee_rate"`
	CollectorAddr string          `json:"collector_addr" validate:"required,addr"`
}

// ConfigUpdate carries the optional fields of an admin config update. Nil
// fields are left untouched.
type ConfigUpdate struct {
	Admin         *string          `json:"admin,omitempty" validate:"omitempty,addr"`
	RegistryAddr  *string          `json:"registry_addr,omitempty" validate:"omitempty,addr"`
	AllowedNative *string          `json:"allowed_native,omitempty"`
	AllowedAsset  *string          `json:"allowed_asset,omitempty" validate:"omitempty,addr"`
	FeeRate       *decimal.Decimal `json:"fee_rate,omitempty"`
	CollectorAddr *string          `json:"collector_addr,omitempty" validate:"omitempty,addr"`
}

// Coin is a single attached native fund.
type Coin struct {
	Denom  string          `json:"denom"`
	Amount decimal.Decimal `json:"amount"`
}

// AssetNotice is the inbound notification an asset ledger sends when tokens
// arrive with an attached instruction. LedgerAddr is the identity of the
// ledger that invoked us, not the original sender.
type AssetNotice struct {
	LedgerAddr string          `json:"ledger_addr" validate:"required,addr"`
	Sender     string          `json:"sender" validate:"required,addr"`
	Amount     decimal.Decimal `json:"amount"`
	Msg        []byte          `json:"msg"`
}

// BuyInstruction is the instruction embedded in an AssetNotice.
type BuyInstruction struct {
	Recipient string `json:"recipient"`
	TokenID   string `json:"token_id"`
}

// Attribute is a key/value pair describing one effect of an operation.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Ack acknowledges a successful operation with attributes describing what
// changed, mirroring the shape downstream indexers already consume.
type Ack struct {
	Action     string      `json:"action"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attr is a convenience constructor for Attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// FloorPrices reports the minimum on-sale price per rarity class. A class
// with no on-sale items reports zero, not absence.
type FloorPrices struct {
	Common    decimal.Decimal `json:"common"`
	Uncommon  decimal.Decimal `json:"uncommon"`
	Rare      decimal.Decimal `json:"rare"`
	Epic      decimal.Decimal `json:"epic"`
	Legendary decimal.Decimal `json:"legendary"`
}
