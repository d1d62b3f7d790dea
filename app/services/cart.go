package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/churchcafe/app/repositories"
	"github.com/shashiranjanraj/churchcafe/pkg/apperr"
)

// LineRef is the product reference of one cart line as the client sent it:
// a snake_case field, its camelCase alias, or a nested value that is either
// an object carrying an id or the id itself.
type LineRef struct {
	Snake  json.RawMessage
	Camel  json.RawMessage
	Nested json.RawMessage
}

// Resolve picks the first usable form in the order Snake, Camel, Nested.
func (r LineRef) Resolve() (uint, bool) {
	if id, ok := parseID(r.Snake); ok {
		return id, true
	}
	if id, ok := parseID(r.Camel); ok {
		return id, true
	}
	if len(r.Nested) == 0 {
		return 0, false
	}
	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if bytes.HasPrefix(bytes.TrimSpace(r.Nested), []byte("{")) {
		if err := json.Unmarshal(r.Nested, &obj); err != nil {
			return 0, false
		}
		return parseID(obj.ID)
	}
	return parseID(r.Nested)
}

// Empty reports whether no form was supplied at all.
func (r LineRef) Empty() bool {
	return isAbsent(r.Snake) && isAbsent(r.Camel) && isAbsent(r.Nested)
}

// CartLine is one line of an order request.
type CartLine struct {
	fields   map[string]json.RawMessage
	Quantity int
}

func (l CartLine) pick(keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := l.fields[k]; ok && !isAbsent(v) {
			return v
		}
	}
	return nil
}

// ItemRef is the product item reference of the line.
func (l CartLine) ItemRef() LineRef {
	return LineRef{
		Snake:  l.fields["product_item_id"],
		Camel:  l.fields["productItemId"],
		Nested: l.pick("item", "product"),
	}
}

// ProductRef is the product reference of the line.
func (l CartLine) ProductRef() LineRef {
	return LineRef{
		Snake:  l.fields["product_id"],
		Camel:  l.fields["productId"],
		Nested: l.fields["product"],
	}
}

// LegacyItemRef is the product item reference a product-keyed schema falls
// back to. The generic "product" key is not part of it.
func (l CartLine) LegacyItemRef() LineRef {
	return LineRef{
		Snake:  l.fields["product_item_id"],
		Camel:  l.fields["productItemId"],
		Nested: l.fields["item"],
	}
}

// Ref returns the reference matching variant.
func (l CartLine) Ref(v repositories.Variant) LineRef {
	if v == repositories.VariantProduct {
		return l.ProductRef()
	}
	return l.ItemRef()
}

// ParseCart decodes the items array of an order request.
func ParseCart(raw json.RawMessage) ([]CartLine, error) {
	if isAbsent(raw) {
		return nil, apperr.InvalidRequest("items required")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || len(elems) == 0 {
		return nil, apperr.InvalidRequest("items required")
	}

	lines := make([]CartLine, len(elems))
	for i, e := range elems {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(e, &fields); err != nil || fields == nil {
			return nil, apperr.InvalidRequest("items must be objects")
		}
		qty, ok := parseQuantity(fields["quantity"])
		if !ok {
			return nil, apperr.InvalidRequest("quantity too large")
		}
		lines[i] = CartLine{fields: fields, Quantity: qty}
	}
	return lines, nil
}

// parseQuantity accepts a number or numeric string, floors it and falls back
// to 1 for anything below 1 or unusable. A quantity beyond MaxInt32 is
// reported as not ok.
func parseQuantity(raw json.RawMessage) (int, bool) {
	f, ok := parseNumber(raw)
	if !ok {
		return 1, true
	}
	f = math.Floor(f)
	if f > math.MaxInt32 {
		return 0, false
	}
	if f < 1 {
		return 1, true
	}
	return int(f), true
}

// parseID accepts a positive whole number, as a JSON number or string.
func parseID(raw json.RawMessage) (uint, bool) {
	f, ok := parseNumber(raw)
	if !ok || f < 1 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	if isAbsent(raw) {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		f, err := n.Float64()
		return f, err == nil && !math.IsInf(f, 0) && !math.IsNaN(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isAbsent(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
