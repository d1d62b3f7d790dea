package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

func parse(t *testing.T, raw string) []CartLine {
	t.Helper()
	lines, err := ParseCart(json.RawMessage(raw))
	require.NoError(t, err)
	return lines
}

func TestParseCartRejectsMissingOrEmptyItems(t *testing.T) {
	for _, raw := range []string{``, `null`, `[]`, `{}`, `"x"`, `3`} {
		_, err := ParseCart(json.RawMessage(raw))
		require.Error(t, err, "input %q", raw)
		assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
		assert.EqualError(t, err, "items required")
	}
}

func TestParseCartRejectsNonObjectLines(t *testing.T) {
	_, err := ParseCart(json.RawMessage(`[{"product_item_id": 1}, 4]`))
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err))
	assert.EqualError(t, err, "items must be objects")
}

func TestQuantityNormalisation(t *testing.T) {
	lines := parse(t, `[
		{"quantity": 2},
		{"quantity": "3"},
		{"quantity": 2.9},
		{"quantity": 0},
		{"quantity": -4},
		{"quantity": "lots"},
		{"quantity": null},
		{}
	]`)
	got := make([]int, len(lines))
	for i, l := range lines {
		got[i] = l.Quantity
	}
	assert.Equal(t, []int{2, 3, 2, 1, 1, 1, 1, 1}, got)
}

func TestOversizedQuantityIsRejected(t *testing.T) {
	for _, q := range []string{`3000000000`, `"2147483648"`, `1e12`} {
		_, err := ParseCart(json.RawMessage(`[{"product_item_id": 1, "quantity": ` + q + `}]`))
		require.Error(t, err, q)
		assert.Equal(t, apperr.KindInvalidRequest, apperr.KindOf(err), q)
		assert.EqualError(t, err, "quantity too large", q)
	}

	lines := parse(t, `[{"product_item_id": 1, "quantity": 2147483647}]`)
	assert.Equal(t, 2147483647, lines[0].Quantity)
}

func TestItemRefForms(t *testing.T) {
	cases := map[string]uint{
		`{"product_item_id": 7}`:                        7,
		`{"product_item_id": "7"}`:                      7,
		`{"productItemId": 8}`:                          8,
		`{"item": {"id": 9}}`:                           9,
		`{"item": 10}`:                                  10,
		`{"product": {"id": 11}}`:                       11,
		`{"product_item_id": 1, "productItemId": 2}`:    1,
		`{"product_item_id": null, "productItemId": 2}`: 2,
		`{"item": {"id": 3}, "product": {"id": 4}}`:     3,
	}
	for raw, want := range cases {
		lines := parse(t, "["+raw+"]")
		id, ok := lines[0].ItemRef().Resolve()
		assert.True(t, ok, raw)
		assert.Equal(t, want, id, raw)
	}
}

func TestProductRefForms(t *testing.T) {
	cases := map[string]uint{
		`{"product_id": 5}`:                 5,
		`{"productId": "6"}`:                6,
		`{"product": {"id": 7}}`:            7,
		`{"product": 8}`:                    8,
		`{"product_id": 1, "productId": 2}`: 1,
	}
	for raw, want := range cases {
		lines := parse(t, "["+raw+"]")
		id, ok := lines[0].Ref(repositories.VariantProduct).Resolve()
		assert.True(t, ok, raw)
		assert.Equal(t, want, id, raw)
	}
}

func TestUnusableRefs(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"product_item_id": 0}`,
		`{"product_item_id": -1}`,
		`{"product_item_id": 1.5}`,
		`{"product_item_id": "abc"}`,
		`{"item": {"name": "latte"}}`,
		`{"item": [1]}`,
	} {
		lines := parse(t, "["+raw+"]")
		_, ok := lines[0].ItemRef().Resolve()
		assert.False(t, ok, raw)
	}
}

func TestLegacyItemRefIgnoresGenericProductKey(t *testing.T) {
	lines := parse(t, `[{"item": {"id": 4}}, {"product": {"id": 5}}]`)

	assert.True(t, lines[0].ProductRef().Empty())
	id, ok := lines[0].LegacyItemRef().Resolve()
	assert.True(t, ok)
	assert.Equal(t, uint(4), id)

	assert.False(t, lines[1].ProductRef().Empty())
	assert.True(t, lines[1].LegacyItemRef().Empty())
}
