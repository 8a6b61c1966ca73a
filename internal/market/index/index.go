// Package index maintains the marketplace's item records together with a
// sale-status secondary index. The index keys are written in the same
// transaction as the primary record, so the on-sale bucket always equals the
// set of records with OnSale == true.
package index

import (
	"encoding/json"
	"fmt"

	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

// Key layout. Bucket entries carry the full serialized item so range reads
// never chase the primary key.
//
//	item/<id>        -> Item
//	sale/0/<id>      -> Item (on sale)
//	sale/1/<id>      -> Item (not on sale)
const (
	itemPrefix    = "item/"
	onSalePrefix  = "sale/0/"
	offSalePrefix = "sale/1/"
)

// Bucket selects one side of the sale-status partition.
type Bucket byte

const (
	OnSale Bucket = iota
	OffSale
)

func (b Bucket) prefix() string {
	if b == OnSale {
		return onSalePrefix
	}
	return offSalePrefix
}

func itemKey(id string) []byte { return []byte(itemPrefix + id) }

func bucketKey(b Bucket, id string) []byte { return []byte(b.prefix() + id) }

func bucketFor(it models.Item) Bucket {
	if it.OnSale {
		return OnSale
	}
	return OffSale
}

// Get loads one item. Missing ids surface store.ErrKeyNotFound.
func Get(txn store.Txn, id string) (models.Item, error) {
	var it models.Item
	raw, err := txn.Get(itemKey(id))
	if err != nil {
		return it, err
	}
	if err := json.Unmarshal(raw, &it); err != nil {
		return it, fmt.Errorf("decoding item %s: %w", id, err)
	}
	return it, nil
}

// Put upserts the record and recomputes its bucket membership atomically with
// the primary write.
func Put(txn store.Txn, it models.Item) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("encoding item %s: %w", it.ID, err)
	}

	prev, err := Get(txn, it.ID)
	switch err {
	case nil:
		if old := bucketFor(prev); old != bucketFor(it) {
			if err := txn.Delete(bucketKey(old, it.ID)); err != nil {
				return err
			}
		}
	case store.ErrKeyNotFound:
		// first write, nothing to move
	default:
		return err
	}

	if err := txn.Set(itemKey(it.ID), raw); err != nil {
		return err
	}
	return txn.Set(bucketKey(bucketFor(it), it.ID), raw)
}

// seekAfter returns the smallest key strictly greater than prefix+id, giving
// the exclusive cursor semantics of startAfter.
func seekAfter(prefix, id string) []byte {
	if id == "" {
		return nil
	}
	return append([]byte(prefix+id), 0)
}

func collect(txn store.Txn, prefix string, startAfter string, limit int) ([]models.Item, error) {
	items := make([]models.Item, 0)
	err := txn.IteratePrefix([]byte(prefix), seekAfter(prefix, startAfter), func(key, val []byte) (bool, error) {
		var it models.Item
		if err := json.Unmarshal(val, &it); err != nil {
			return false, fmt.Errorf("decoding item at %s: %w", key, err)
		}
		items = append(items, it)
		return limit <= 0 || len(items) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// All ranges over every record in ascending id order. limit <= 0 means
// unlimited.
func All(txn store.Txn, startAfter string, limit int) ([]models.Item, error) {
	return collect(txn, itemPrefix, startAfter, limit)
}

// Range ranges over one sale bucket in ascending id order. limit <= 0 means
// unlimited.
func Range(txn store.Txn, b Bucket, startAfter string, limit int) ([]models.Item, error) {
	return collect(txn, b.prefix(), startAfter, limit)
}

// WithIDs loads every named item, failing on the first missing id.
func WithIDs(txn store.Txn, ids []string) ([]models.Item, error) {
	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		it, err := Get(txn, id)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
