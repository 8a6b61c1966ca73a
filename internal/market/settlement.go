package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mperrors "github.com/wyvernlabs/nft-marketplace/common/errors"
	"github.com/wyvernlabs/nft-marketplace/internal/market/index"
	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/metrics"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

// Sales priced below minFeeThreshold pay the flat minFee instead of a
// percentage, so micro-sales can never round the fee down to zero.
var (
	minFeeThreshold = decimal.NewFromInt(5)
	minFee          = decimal.NewFromInt(1)
)

// computeFee returns the fee and owner payout for a sale price. payout is
// checked non-negative even though the flat-fee construction makes an
// underflow impossible for prices >= 1.
func computeFee(price, rate decimal.Decimal) (fee, payout decimal.Decimal, err error) {
	if price.LessThan(minFeeThreshold) {
		fee = minFee
	} else {
		fee = price.Mul(rate).Floor()
	}
	payout = price.Sub(fee)
	if payout.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("payout for price %s: %w", price, mperrors.ErrOverflow)
	}
	return fee, payout, nil
}

func newItemTransfer(registryAddr, recipient, tokenID string) TransferItemRequest {
	return TransferItemRequest{
		RequestID:    uuid.New(),
		RegistryAddr: registryAddr,
		Recipient:    recipient,
		TokenID:      tokenID,
	}
}

func newNativePayment(denom, recipient string, amount decimal.Decimal) PaymentRequest {
	return PaymentRequest{
		RequestID: uuid.New(),
		Kind:      PaymentNative,
		Denom:     denom,
		Recipient: recipient,
		Amount:    amount,
	}
}

func newAssetPayment(assetAddr, recipient string, amount decimal.Decimal) PaymentRequest {
	return PaymentRequest{
		RequestID: uuid.New(),
		Kind:      PaymentAsset,
		AssetAddr: assetAddr,
		Recipient: recipient,
		Amount:    amount,
	}
}

// BuyNative settles a purchase paid with attached native funds. recipient
// defaults to the caller. Exactly one denomination must be attached, it must
// match the configured denom and its amount must equal the listed price.
func (s *Service) BuyNative(ctx context.Context, caller, tokenID, recipient string, funds []models.Coin) (models.Ack, error) {
	if recipient == "" {
		recipient = caller
	}
	if len(funds) != 1 {
		return models.Ack{}, mperrors.ErrSendSingleNative
	}
	paid := funds[0]

	var ack models.Ack
	err := s.store.Update(func(txn store.Txn) error {
		cfg, err := LoadConfig(txn)
		if err != nil {
			return err
		}
		if cfg.AllowedNative == nil || paid.Denom != *cfg.AllowedNative {
			return &mperrors.NativeDenomNotAllowedError{Denom: paid.Denom}
		}

		it, err := index.Get(txn, tokenID)
		if err == store.ErrKeyNotFound {
			return fmt.Errorf("item %s: %w", tokenID, mperrors.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !it.OnSale {
			return mperrors.ErrNotOnSale
		}
		if !paid.Amount.Equal(it.Price) {
			return &mperrors.WrongFundsAmountError{Need: it.Price, Sent: paid.Amount}
		}

		fee, payout, err := computeFee(it.Price, cfg.FeeRate)
		if err != nil {
			return err
		}

		if err := s.registry.TransferItem(ctx, newItemTransfer(cfg.RegistryAddr, recipient, tokenID)); err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, newNativePayment(paid.Denom, it.Owner, payout)); err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, newNativePayment(paid.Denom, cfg.CollectorAddr, fee)); err != nil {
			return err
		}

		it.OnSale = false
		it.Owner = recipient
		if err := index.Put(txn, it); err != nil {
			return err
		}

		ack = purchaseAck("buy_native", tokenID, it.Price, fee)
		return nil
	})
	if err != nil {
		return models.Ack{}, err
	}

	s.recordPurchase("native", tokenID, caller, recipient, ack)
	return ack, nil
}

// ReceiveAsset settles a purchase triggered by a token-asset ledger
// notification carrying an embedded buy instruction. The notifying ledger
// must be the configured payment asset.
func (s *Service) ReceiveAsset(ctx context.Context, notice models.AssetNotice) (models.Ack, error) {
	var instr models.BuyInstruction
	if err := json.Unmarshal(notice.Msg, &instr); err != nil {
		return models.Ack{}, fmt.Errorf("decoding buy instruction: %w", mperrors.ErrWrongInput)
	}
	recipient := instr.Recipient
	if recipient == "" {
		recipient = notice.Sender
	}

	var ack models.Ack
	err := s.store.Update(func(txn store.Txn) error {
		cfg, err := LoadConfig(txn)
		if err != nil {
			return err
		}
		if cfg.AllowedAsset == nil {
			return mperrors.ErrAssetNotSupported
		}
		if notice.LedgerAddr != *cfg.AllowedAsset {
			return &mperrors.AssetNotAllowedError{Sent: notice.LedgerAddr, Need: *cfg.AllowedAsset}
		}

		it, err := index.Get(txn, instr.TokenID)
		if err == store.ErrKeyNotFound {
			return fmt.Errorf("item %s: %w", instr.TokenID, mperrors.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if !it.OnSale {
			return mperrors.ErrNotOnSale
		}
		if !notice.Amount.Equal(it.Price) {
			return &mperrors.WrongFundsAmountError{Need: it.Price, Sent: notice.Amount}
		}

		fee, payout, err := computeFee(it.Price, cfg.FeeRate)
		if err != nil {
			return err
		}

		if err := s.registry.TransferItem(ctx, newItemTransfer(cfg.RegistryAddr, recipient, instr.TokenID)); err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, newAssetPayment(*cfg.AllowedAsset, it.Owner, payout)); err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, newAssetPayment(*cfg.AllowedAsset, cfg.CollectorAddr, fee)); err != nil {
			return err
		}

		it.OnSale = false
		it.Owner = recipient
		if err := index.Put(txn, it); err != nil {
			return err
		}

		ack = purchaseAck("buy_asset", instr.TokenID, it.Price, fee)
		return nil
	})
	if err != nil {
		return models.Ack{}, err
	}

	s.recordPurchase("asset", instr.TokenID, notice.Sender, recipient, ack)
	return ack, nil
}

func purchaseAck(action, tokenID string, price, fee decimal.Decimal) models.Ack {
	return models.Ack{
		Action: action,
		Attributes: []models.Attribute{
			models.Attr("token_id", tokenID),
			models.Attr("price", price.String()),
			models.Attr("fee", fee.String()),
		},
	}
}

func (s *Service) recordPurchase(path, tokenID, buyer, recipient string, ack models.Ack) {
	metrics.PurchasesSettled.WithLabelValues(path).Inc()
	for _, attr := range ack.Attributes {
		if attr.Key == "fee" {
			if fee, err := decimal.NewFromString(attr.Value); err == nil {
				metrics.FeesCollected.Add(fee.InexactFloat64())
			}
		}
	}
	s.logger.Info("purchase settled",
		zap.String("path", path),
		zap.String("token_id", tokenID),
		zap.String("buyer", buyer),
		zap.String("recipient", recipient),
	)
}
