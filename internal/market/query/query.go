// Package query provides the read-only projections over the item index. All
// range operations clamp their page size to min(requested or 10, 30).
package query

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	mperrors "github.com/wyvernlabs/nft-marketplace/common/errors"
	"github.com/wyvernlabs/nft-marketplace/internal/market"
	"github.com/wyvernlabs/nft-marketplace/internal/market/index"
	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

const (
	defaultLimit = 10
	maxLimit     = 30
)

// clampLimit applies the default and the hard cap. limit <= 0 selects the
// default.
func clampLimit(limit int) int {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// Service answers read-only marketplace queries.
type Service struct {
	store store.Store
}

// New creates a query service over the given store.
func New(st store.Store) *Service {
	return &Service{store: st}
}

// Config returns the marketplace configuration.
func (s *Service) Config() (models.Config, error) {
	var cfg models.Config
	err := s.store.View(func(txn store.Txn) error {
		var err error
		cfg, err = market.LoadConfig(txn)
		return err
	})
	return cfg, err
}

// Token returns one item by id.
func (s *Service) Token(id string) (models.Item, error) {
	var it models.Item
	err := s.store.View(func(txn store.Txn) error {
		var err error
		it, err = index.Get(txn, id)
		if err == store.ErrKeyNotFound {
			return fmt.Errorf("item %s: %w", id, mperrors.ErrNotFound)
		}
		return err
	})
	return it, err
}

// RangeTokens pages over all records in ascending id order.
func (s *Service) RangeTokens(startAfter string, limit int) ([]models.Item, error) {
	var items []models.Item
	err := s.store.View(func(txn store.Txn) error {
		var err error
		items, err = index.All(txn, startAfter, clampLimit(limit))
		return err
	})
	return items, err
}

// ListTokens returns the named items, failing if any id is missing.
func (s *Service) ListTokens(ids []string) ([]models.Item, error) {
	var items []models.Item
	err := s.store.View(func(txn store.Txn) error {
		var err error
		items, err = index.WithIDs(txn, ids)
		if err == store.ErrKeyNotFound {
			return mperrors.ErrNotFound
		}
		return err
	})
	return items, err
}

// ListTokensOnSale pages over the on-sale bucket in ascending id order.
func (s *Service) ListTokensOnSale(startAfter string, limit int) ([]models.Item, error) {
	var items []models.Item
	err := s.store.View(func(txn store.Txn) error {
		var err error
		items, err = index.Range(txn, index.OnSale, startAfter, clampLimit(limit))
		return err
	})
	return items, err
}

// ListedSize counts on-sale items after the cursor.
func (s *Service) ListedSize(startAfter string) (int, error) {
	var n int
	err := s.store.View(func(txn store.Txn) error {
		items, err := index.Range(txn, index.OnSale, startAfter, 0)
		if err != nil {
			return err
		}
		n = len(items)
		return nil
	})
	return n, err
}

// onSaleAfter loads the whole on-sale bucket (optionally after an id cursor)
// for the sort/filter projections.
func (s *Service) onSaleAfter(startAfter string) ([]models.Item, error) {
	var items []models.Item
	err := s.store.View(func(txn store.Txn) error {
		var err error
		items, err = index.Range(txn, index.OnSale, startAfter, 0)
		return err
	})
	return items, err
}

// ListByPriceAsc returns on-sale items in descending price order. The
// inverted ordering is a long-standing naming defect kept for compatibility
// with deployed clients; ListByPriceDesc is its ascending mirror. A non-zero
// priceAfter keeps only items priced strictly below it.
func (s *Service) ListByPriceAsc(priceAfter decimal.Decimal, limit int) ([]models.Item, error) {
	items, err := s.onSaleAfter("")
	if err != nil {
		return nil, err
	}
	if !priceAfter.IsZero() {
		items = filterItems(items, func(it models.Item) bool { return it.Price.LessThan(priceAfter) })
	}
	sortByPriceDesc(items)
	return truncate(items, clampLimit(limit)), nil
}

// ListByPriceDesc returns on-sale items in ascending price order. A non-zero
// priceAfter keeps only items priced strictly above it.
func (s *Service) ListByPriceDesc(priceAfter decimal.Decimal, limit int) ([]models.Item, error) {
	items, err := s.onSaleAfter("")
	if err != nil {
		return nil, err
	}
	if !priceAfter.IsZero() {
		items = filterItems(items, func(it models.Item) bool { return it.Price.GreaterThan(priceAfter) })
	}
	sortByPriceAsc(items)
	return truncate(items, clampLimit(limit)), nil
}

// ListByRarity returns on-sale items whose rarity is in the given set, in
// ascending id order.
func (s *Service) ListByRarity(startAfter string, limit int, rarities []string) ([]models.Item, error) {
	items, err := s.onSaleAfter(startAfter)
	if err != nil {
		return nil, err
	}
	items = filterItems(items, rarityIn(rarities))
	return truncate(items, clampLimit(limit)), nil
}

// ListByRarityAsc is the rarity-filtered variant of ListByPriceAsc and shares
// its inverted (descending) ordering.
func (s *Service) ListByRarityAsc(startAfter string, limit int, rarities []string) ([]models.Item, error) {
	items, err := s.onSaleAfter(startAfter)
	if err != nil {
		return nil, err
	}
	items = filterItems(items, rarityIn(rarities))
	sortByPriceDesc(items)
	return truncate(items, clampLimit(limit)), nil
}

// ListByRarityDesc is the rarity-filtered variant of ListByPriceDesc
// (ascending price).
func (s *Service) ListByRarityDesc(startAfter string, limit int, rarities []string) ([]models.Item, error) {
	items, err := s.onSaleAfter(startAfter)
	if err != nil {
		return nil, err
	}
	items = filterItems(items, rarityIn(rarities))
	sortByPriceAsc(items)
	return truncate(items, clampLimit(limit)), nil
}

// ListByOwner returns on-sale items of one owner, paginated.
func (s *Service) ListByOwner(startAfter string, limit int, owner string) ([]models.Item, error) {
	items, err := s.onSaleAfter(startAfter)
	if err != nil {
		return nil, err
	}
	items = filterItems(items, func(it models.Item) bool { return it.Owner == owner })
	return truncate(items, clampLimit(limit)), nil
}

// ListedTokensByOwner returns every on-sale item of one owner, unpaginated.
func (s *Service) ListedTokensByOwner(owner string) ([]models.Item, error) {
	items, err := s.onSaleAfter("")
	if err != nil {
		return nil, err
	}
	return filterItems(items, func(it models.Item) bool { return it.Owner == owner }), nil
}

// FloorPrices computes the minimum on-sale price per rarity class. Classes
// with no on-sale items report zero.
func (s *Service) FloorPrices() (models.FloorPrices, error) {
	items, err := s.onSaleAfter("")
	if err != nil {
		return models.FloorPrices{}, err
	}

	floors := make(map[string]decimal.Decimal, len(models.RarityClasses))
	for _, it := range items {
		cur, ok := floors[it.Rarity]
		if !ok || it.Price.LessThan(cur) {
			floors[it.Rarity] = it.Price
		}
	}
	return models.FloorPrices{
		Common:    floors["common"],
		Uncommon:  floors["uncommon"],
		Rare:      floors["rare"],
		Epic:      floors["epic"],
		Legendary: floors["legendary"],
	}, nil
}

func rarityIn(rarities []string) func(models.Item) bool {
	set := make(map[string]struct{}, len(rarities))
	for _, r := range rarities {
		set[r] = struct{}{}
	}
	return func(it models.Item) bool {
		_, ok := set[it.Rarity]
		return ok
	}
}

func filterItems(items []models.Item, keep func(models.Item) bool) []models.Item {
	out := items[:0:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func truncate(items []models.Item, limit int) []models.Item {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func sortByPriceAsc(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Price.LessThan(items[j].Price) })
}

func sortByPriceDesc(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[j].Price.LessThan(items[i].Price) })
}
