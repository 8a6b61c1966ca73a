package market

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentKind selects which external asset ledger a payment request targets.
type PaymentKind string

const (
	PaymentNative PaymentKind = "native"
	PaymentAsset  PaymentKind = "asset"
)

// TransferItemRequest asks the external item registry to move an item. The
// registry enforces operator approval; a rejection fails the whole operation.
type TransferItemRequest struct {
	RequestID    uuid.UUID `json:"request_id"`
	RegistryAddr string    `json:"registry_addr"`
	Recipient    string    `json:"recipient"`
	TokenID      string    `json:"token_id"`
}

// PaymentRequest asks an asset ledger to move funds. Denom is set for native
// payments, AssetAddr for token-asset payments.
type PaymentRequest struct {
	RequestID uuid.UUID       `json:"request_id"`
	Kind      PaymentKind     `json:"kind"`
	Denom     string          `json:"denom,omitempty"`
	AssetAddr string          `json:"asset_addr,omitempty"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
}

// ItemRegistry is the external collaborator owning true item transfer and
// approval semantics.
type ItemRegistry interface {
	TransferItem(ctx context.Context, req TransferItemRequest) error
}

// AssetLedger is the external collaborator managing fungible balances.
type AssetLedger interface {
	Transfer(ctx context.Context, req PaymentRequest) error
}

// LogEmitter implements both collaborator interfaces by logging the outbound
// request. The surrounding deployment tails these emissions and relays them;
// in tests, capturing fakes replace it.
type LogEmitter struct {
	logger *zap.Logger
}

// NewLogEmitter creates a LogEmitter.
func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	return &LogEmitter{logger: logger.Named("emitter")}
}

func (e *LogEmitter) TransferItem(_ context.Context, req TransferItemRequest) error {
	e.logger.Info("emit item transfer",
		zap.String("request_id", req.RequestID.String()),
		zap.String("registry", req.RegistryAddr),
		zap.String("recipient", req.Recipient),
		zap.String("token_id", req.TokenID),
	)
	return nil
}

func (e *LogEmitter) Transfer(_ context.Context, req PaymentRequest) error {
	e.logger.Info("emit payment",
		zap.String("request_id", req.RequestID.String()),
		zap.String("kind", string(req.Kind)),
		zap.String("recipient", req.Recipient),
		zap.String("amount", req.Amount.String()),
	)
	return nil
}
