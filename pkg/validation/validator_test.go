package validation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wyvernlabs/nft-marketplace/pkg/validation"
)

func TestStructReportsFailedFields(t *testing.T) {
	type req struct {
		ID    string `validate:"required"`
		Owner string `validate:"required,addr"`
	}

	require.NoError(t, validation.Struct(req{ID: "x", Owner: "alice"}))

	var verrs validation.FieldErrors
	err := validation.Struct(req{ID: "x"})
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "Owner", verrs[0].Field)
	require.Equal(t, "required", verrs[0].Tag)

	verrs = nil
	err = validation.Struct(req{ID: "x", Owner: "two words"})
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "addr", verrs[0].Tag)
}

func TestAddr(t *testing.T) {
	require.NoError(t, validation.Addr("cosmos1abc"))
	require.Error(t, validation.Addr(""))
	require.Error(t, validation.Addr("two words"))
	require.Error(t, validation.Addr("tab\there"))
}
