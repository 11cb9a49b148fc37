package session

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// SnackOrder is one line of a session's snack purchase. Name and UnitPrice
// are captured at order time and never re-looked-up from the live catalog.
type SnackOrder struct {
	ItemID    string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Category  string `bson:"category,omitempty" json:"category,omitempty"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	UnitPrice int    `bson:"unitPrice" json:"unit_price"`
	LineTotal int    `bson:"totalPrice" json:"line_total"`
}

// Recompute re-derives the line total from quantity and unit price. Stored
// totals are never trusted verbatim.
func (s *SnackOrder) Recompute() {
	s.LineTotal = s.Quantity * s.UnitPrice
}

// SnackOrders decodes both snack representations found in the entries
// collection: the structured line format and the legacy flat list of
// free-text labels. The discriminator check happens here, once, at the
// storage boundary.
type SnackOrders []SnackOrder

// Total returns the sum of all line totals.
func (s SnackOrders) Total() int {
	total := 0
	for _, line := range s {
		total += line.LineTotal
	}
	return total
}

// legacyPrices maps pre-catalog snack labels to the prices they sold at.
// This is a frozen historical table, deliberately disconnected from the
// current catalog; labels outside it decode with price 0.
var legacyPrices = map[string]int{
	"soda":     50,
	"chips":    40,
	"sandwich": 120,
	"combo":    200,
}

// NormalizeLegacySnacks folds a legacy label list into structured lines.
// Repeated labels collapse into quantities, preserving first-seen order so
// the result is deterministic for a given stored document.
func NormalizeLegacySnacks(labels []string) SnackOrders {
	counts := make(map[string]int)
	order := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	lines := make(SnackOrders, 0, len(order))
	for _, label := range order {
		line := SnackOrder{
			ItemID:    label,
			Name:      titleCase(label),
			Category:  "legacy",
			Quantity:  counts[label],
			UnitPrice: legacyPrices[label],
		}
		line.Recompute()
		lines = append(lines, line)
	}
	return lines
}

func titleCase(label string) string {
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler. It inspects the first
// array element: a bare string means the document predates structured snack
// lines and gets normalized through the legacy table.
func (s *SnackOrders) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*s = nil
		return nil
	case bson.TypeArray:
	default:
		return fmt.Errorf("snacks: unexpected bson type %s", t)
	}

	raw := bson.RawValue{Type: t, Value: data}
	arr, ok := raw.ArrayOK()
	if !ok {
		return fmt.Errorf("snacks: cannot read bson array")
	}

	values, err := arr.Values()
	if err != nil {
		return fmt.Errorf("snacks: cannot read array values: %w", err)
	}
	if len(values) == 0 {
		*s = SnackOrders{}
		return nil
	}

	if values[0].Type == bson.TypeString {
		labels := make([]string, 0, len(values))
		for _, v := range values {
			if label, ok := v.StringValueOK(); ok {
				labels = append(labels, label)
			}
		}
		*s = NormalizeLegacySnacks(labels)
		return nil
	}

	var lines []SnackOrder
	if err := raw.Unmarshal(&lines); err != nil {
		return fmt.Errorf("snacks: cannot decode order lines: %w", err)
	}
	for i := range lines {
		lines[i].Recompute()
	}
	*s = lines
	return nil
}
