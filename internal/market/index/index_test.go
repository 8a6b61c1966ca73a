package index

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/wyvernlabs/nft-marketplace/internal/market/store"
	"github.com/wyvernlabs/nft-marketplace/pkg/models"
)

func newItem(id string, price int64, onSale bool) models.Item {
	return models.Item{
		ID:     id,
		Price:  decimal.NewFromInt(price),
		OnSale: onSale,
		Rarity: "common",
		Owner:  "alice",
	}
}

func put(t *testing.T, st store.Store, items ...models.Item) {
	t.Helper()
	require.NoError(t, st.Update(func(txn store.Txn) error {
		for _, it := range items {
			if err := Put(txn, it); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestPutGetRoundTrip(t *testing.T) {
	st := store.NewMemory()
	put(t, st, newItem("dragon1", 100, true))

	require.NoError(t, st.View(func(txn store.Txn) error {
		it, err := Get(txn, "dragon1")
		require.NoError(t, err)
		require.Equal(t, "dragon1", it.ID)
		require.True(t, it.Price.Equal(decimal.NewFromInt(100)))
		require.True(t, it.OnSale)

		_, err = Get(txn, "missing")
		require.ErrorIs(t, err, store.ErrKeyNotFound)
		return nil
	}))
}

// The on-sale bucket must always equal the set of records with OnSale true,
// including after a record moves between buckets.
func TestBucketTracksSaleFlag(t *testing.T) {
	st := store.NewMemory()
	put(t, st, newItem("a", 1, true), newItem("b", 2, false), newItem("c", 3, true))

	assertBuckets := func(wantOn, wantOff []string) {
		t.Helper()
		require.NoError(t, st.View(func(txn store.Txn) error {
			on, err := Range(txn, OnSale, "", 0)
			require.NoError(t, err)
			off, err := Range(txn, OffSale, "", 0)
			require.NoError(t, err)
			require.Equal(t, wantOn, ids(on))
			require.Equal(t, wantOff, ids(off))

			all, err := All(txn, "", 0)
			require.NoError(t, err)
			var flagged []string
			for _, it := range all {
				if it.OnSale {
					flagged = append(flagged, it.ID)
				}
			}
			require.Equal(t, wantOn, flagged)
			return nil
		}))
	}

	assertBuckets([]string{"a", "c"}, []string{"b"})

	put(t, st, newItem("a", 1, false))
	assertBuckets([]string{"c"}, []string{"a", "b"})

	put(t, st, newItem("b", 2, true))
	assertBuckets([]string{"b", "c"}, []string{"a"})
}

func TestRangeCursorIsExclusive(t *testing.T) {
	st := store.NewMemory()
	put(t, st, newItem("a", 1, true), newItem("b", 2, true), newItem("c", 3, true))

	require.NoError(t, st.View(func(txn store.Txn) error {
		items, err := Range(txn, OnSale, "a", 0)
		require.NoError(t, err)
		require.Equal(t, []string{"b", "c"}, ids(items))

		items, err = Range(txn, OnSale, "a", 1)
		require.NoError(t, err)
		require.Equal(t, []string{"b"}, ids(items))
		return nil
	}))
}

func TestWithIDsFailsOnAnyMissing(t *testing.T) {
	st := store.NewMemory()
	put(t, st, newItem("a", 1, true))

	require.NoError(t, st.View(func(txn store.Txn) error {
		items, err := WithIDs(txn, []string{"a"})
		require.NoError(t, err)
		require.Len(t, items, 1)

		_, err = WithIDs(txn, []string{"a", "missing"})
		require.ErrorIs(t, err, store.ErrKeyNotFound)
		return nil
	}))
}

func ids(items []models.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
