package market

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	mperrors "github.com/wyvernlabs/nft-marketplace/common/errors"
	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
	"github.com/wyvernlabs/nft-marketplace/pkg/validation"
)

// MaxFeeRate caps the configurable fee fraction at 15%.
var MaxFeeRate = decimal.RequireFromString("0.15")

var configKey = []byte("config")

func validateAddr(addr string) error {
	if err := validation.Addr(addr); err != nil {
		return fmt.Errorf("%v: %w", err, mperrors.ErrWrongInput)
	}
	return nil
}

func validateFeeRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(MaxFeeRate) {
		return fmt.Errorf("fee rate %s out of range: %w", rate, mperrors.ErrWrongInput)
	}
	return nil
}

// NewConfig validates and assembles a marketplace configuration. Exactly one
// of allowedNative / allowedAsset must be present.
func NewConfig(admin, registryAddr string, allowedNative, allowedAsset *string, feeRate decimal.Decimal, collectorAddr string) (models.Config, error) {
	var cfg models.Config

	for _, addr := range []string{admin, registryAddr, collectorAddr} {
		if err := validateAddr(addr); err != nil {
			return cfg, err
		}
	}
	if err := validateFeeRate(feeRate); err != nil {
		return cfg, err
	}

	switch {
	case allowedNative != nil && allowedAsset == nil:
		if *allowedNative == "" {
			return cfg, fmt.Errorf("empty native denom: %w", mperrors.ErrWrongInput)
		}
	case allowedNative == nil && allowedAsset != nil:
		if err := validateAddr(*allowedAsset); err != nil {
			return cfg, err
		}
	default:
		return cfg, mperrors.ErrInvalidTokenType
	}

	cfg = models.Config{
		Admin:         admin,
		RegistryAddr:  registryAddr,
		AllowedNative: allowedNative,
		AllowedAsset:  allowedAsset,
		FeeRate:       feeRate,
		CollectorAddr: collectorAddr,
	}
	return cfg, nil
}

// LoadConfig reads the configuration singleton inside txn. The query service
// shares it so the storage key lives in one place.
func LoadConfig(txn store.Txn) (models.Config, error) {
	var cfg models.Config
	raw, err := txn.Get(configKey)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func saveConfig(txn store.Txn, cfg models.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return txn.Set(configKey, raw)
}

// applyUpdate overlays the update on cfg, keeping the exactly-one-of payment
// invariant: setting one payment form clears the other.
func applyUpdate(cfg models.Config, upd models.ConfigUpdate) (models.Config, error) {
	if upd.Admin != nil {
		if err := validateAddr(*upd.Admin); err != nil {
			return cfg, err
		}
		cfg.Admin = *upd.Admin
	}
	if upd.RegistryAddr != nil {
		if err := validateAddr(*upd.RegistryAddr); err != nil {
			return cfg, err
		}
		cfg.RegistryAddr = *upd.RegistryAddr
	}

	switch {
	case upd.AllowedNative != nil && upd.AllowedAsset != nil:
		return cfg, mperrors.ErrInvalidTokenType
	case upd.AllowedNative != nil:
		if *upd.AllowedNative == "" {
			return cfg, fmt.Errorf("empty native denom: %w", mperrors.ErrWrongInput)
		}
		cfg.AllowedNative = upd.AllowedNative
		cfg.AllowedAsset = nil
	case upd.AllowedAsset != nil:
		if err := validateAddr(*upd.AllowedAsset); err != nil {
			return cfg, err
		}
		cfg.AllowedAsset = upd.AllowedAsset
		cfg.AllowedNative = nil
	}

	if upd.FeeRate != nil {
		if err := validateFeeRate(*upd.FeeRate); err != nil {
			return cfg, err
		}
		cfg.FeeRate = *upd.FeeRate
	}
	if upd.CollectorAddr != nil {
		if err := validateAddr(*upd.CollectorAddr); err != nil {
			return cfg, err
		}
		cfg.CollectorAddr = *upd.CollectorAddr
	}
	return cfg, nil
}
