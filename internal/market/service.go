// Package market implements the marketplace ledger: configuration, listing
// management and purchase settlement over an ordered-key store. Each
// operation runs in one store transaction together with its outbound
// collaborator requests, so effects apply all-or-nothing.
package market

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	mperrors "github.com/wyvernlabs/nft-marketplace/common/errors"
	"github.com/wyvernlabs/nft-marketplace/internal/market/index"
	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/metrics"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

// Service exposes the mutating marketplace operations.
type Service struct {
	store    store.Store
	registry ItemRegistry
	ledger   AssetLedger
	logger   *zap.Logger
}

// New creates a marketplace service over the given store and collaborators.
func New(st store.Store, registry ItemRegistry, ledger AssetLedger, logger *zap.Logger) *Service {
	return &Service{
		store:    st,
		registry: registry,
		ledger:   ledger,
		logger:   logger.Named("market"),
	}
}

// Initialize persists the marketplace configuration if none exists yet and
// acknowledges the stored values. Calling it again against an existing
// configuration is an error; use UpdateConfig.
func (s *Service) Initialize(ctx context.Context, cfg models.Config) (models.Ack, error) {
	validated, err := NewConfig(cfg.Admin, cfg.RegistryAddr, cfg.AllowedNative, cfg.AllowedAsset, cfg.FeeRate, cfg.CollectorAddr)
	if err != nil {
		return models.Ack{}, err
	}

	err = s.store.Update(func(txn store.Txn) error {
		if _, err := LoadConfig(txn); err == nil {
			return fmt.Errorf("already initialized: %w", mperrors.ErrWrongInput)
		} else if err != store.ErrKeyNotFound {
			return err
		}
		return saveConfig(txn, validated)
	})
	if err != nil {
		return models.Ack{}, err
	}

	s.logger.Info("marketplace initialized",
		zap.String("admin", validated.Admin),
		zap.String("registry", validated.RegistryAddr),
		zap.String("fee_rate", validated.FeeRate.String()),
	)
	return models.Ack{
		Action: "instantiate",
		Attributes: []models.Attribute{
			models.Attr("admin", validated.Admin),
			models.Attr("registry_addr", validated.RegistryAddr),
			models.Attr("allowed_native", strOrNone(validated.AllowedNative)),
			models.Attr("allowed_asset", strOrNone(validated.AllowedAsset)),
			models.Attr("fee_rate", validated.FeeRate.String()),
			models.Attr("collector_addr", validated.CollectorAddr),
		},
	}, nil
}

// Initialized reports whether a configuration has been persisted.
func (s *Service) Initialized() (bool, error) {
	var found bool
	err := s.store.View(func(txn store.Txn) error {
		_, err := LoadConfig(txn)
		if err == store.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// UpdateConfig overwrites configuration fields. Admin only.
func (s *Service) UpdateConfig(ctx context.Context, caller string, upd models.ConfigUpdate) (models.Ack, error) {
	err := s.store.Update(func(txn store.Txn) error {
		cfg, err := LoadConfig(txn)
		if err != nil {
			return err
		}
		if caller != cfg.Admin {
			return mperrors.ErrUnauthorized
		}
		next, err := applyUpdate(cfg, upd)
		if err != nil {
			return err
		}
		return saveConfig(txn, next)
	})
	if err != nil {
		return models.Ack{}, err
	}
	return models.Ack{Action: "update_config"}, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() || !price.IsInteger() {
		return fmt.Errorf("price %s must be a non-negative integer amount: %w", price, mperrors.ErrWrongInput)
	}
	return nil
}

// ListItems lists or relists a batch of items. Existing records require the
// caller to be the record owner and keep their owner and rarity; new records
// are inserted as submitted. Registry-side operator approval for first-time
// records is not checked here; an unapproved item simply fails at its first
// transfer (settlement or delist). The batch commits all-or-nothing.
func (s *Service) ListItems(ctx context.Context, caller string, items []models.Item) (models.Ack, error) {
	if len(items) == 0 {
		return models.Ack{}, fmt.Errorf("empty listing batch: %w", mperrors.ErrWrongInput)
	}

	ack := models.Ack{Action: "list_items"}
	err := s.store.Update(func(txn store.Txn) error {
		for _, submitted := range items {
			if submitted.ID == "" {
				return fmt.Errorf("empty item id: %w", mperrors.ErrWrongInput)
			}
			if err := validatePrice(submitted.Price); err != nil {
				return err
			}

			existing, err := index.Get(txn, submitted.ID)
			switch err {
			case nil:
				if existing.Owner != caller {
					return mperrors.ErrUnauthorized
				}
				existing.OnSale = true
				existing.Price = submitted.Price
				if err := index.Put(txn, existing); err != nil {
					return err
				}
			case store.ErrKeyNotFound:
				if err := index.Put(txn, submitted); err != nil {
					return err
				}
			default:
				return err
			}
			ack.Attributes = append(ack.Attributes, models.Attr("token", submitted.ID))
		}
		return nil
	})
	if err != nil {
		return models.Ack{}, err
	}

	metrics.ItemsListed.Add(float64(len(items)))
	s.logger.Info("items listed", zap.String("caller", caller), zap.Int("count", len(items)))
	return ack, nil
}

// DelistItems takes items off sale and emits transfer-back requests to the
// registry. The transfer-back is a compatibility emission: it is a no-op on
// the registry side when the marketplace never held custody.
func (s *Service) DelistItems(ctx context.Context, caller string, ids []string) (models.Ack, error) {
	ack := models.Ack{Action: "delist_items"}
	err := s.store.Update(func(txn store.Txn) error {
		cfg, err := LoadConfig(txn)
		if err != nil {
			return err
		}
		for _, id := range ids {
			it, err := index.Get(txn, id)
			if err == store.ErrKeyNotFound {
				return fmt.Errorf("item %s: %w", id, mperrors.ErrNotFound)
			}
			if err != nil {
				return err
			}
			if caller != it.Owner {
				return mperrors.ErrUnauthorized
			}

			it.OnSale = false
			if err := index.Put(txn, it); err != nil {
				return err
			}
			if err := s.registry.TransferItem(ctx, newItemTransfer(cfg.RegistryAddr, it.Owner, it.ID)); err != nil {
				return err
			}
			ack.Attributes = append(ack.Attributes, models.Attr("token", id))
		}
		return nil
	})
	if err != nil {
		return models.Ack{}, err
	}

	metrics.ItemsDelisted.Add(float64(len(ids)))
	s.logger.Info("items delisted", zap.String("caller", caller), zap.Int("count", len(ids)))
	return ack, nil
}

// UpdatePrice overwrites one item's price. Owner only; the item does not need
// to be on sale.
func (s *Service) UpdatePrice(ctx context.Context, caller, id string, price decimal.Decimal) (models.Ack, error) {
	if err := validatePrice(price); err != nil {
		return models.Ack{}, err
	}

	err := s.store.Update(func(txn store.Txn) error {
		it, err := index.Get(txn, id)
		if err == store.ErrKeyNotFound {
			return fmt.Errorf("item %s: %w", id, mperrors.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if caller != it.Owner {
			return mperrors.ErrUnauthorized
		}
		it.Price = price
		return index.Put(txn, it)
	})
	if err != nil {
		return models.Ack{}, err
	}

	return models.Ack{
		Action: "update_price",
		Attributes: []models.Attribute{
			models.Attr("token_id", id),
			models.Attr("price", price.String()),
		},
	}, nil
}

func strOrNone(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}
