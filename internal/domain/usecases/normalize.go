// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
// They contain NO framework code, NO external dependencies - just pure business logic.
package usecases

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"spendchat/internal/domain/entities"
)

// Required source columns. The source ships spreadsheet-style headers,
// sometimes with a UTF-8 BOM glued to the first one.
const (
	ColCommodity = "Commodity"
	ColSupplier  = "Top Supplier"
	ColQuantity  = "Quantity (KG)"
	ColSpend     = "Spend (USD)"
)

// Normalizer validates and cleans raw tabular rows into CleanRecords.
// Deterministic: identical input always yields identical output.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize cleans column names, drops rows with missing or non-numeric
// required values or non-positive quantity, and computes the per-unit price
// for the survivors. Returns entities.ErrData if a required column is
// entirely absent from the source.
func (n *Normalizer) Normalize(table *entities.Table) ([]entities.CleanRecord, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: source table is empty", entities.ErrData)
	}

	cols := make(map[string]int, len(table.Columns))
	for i, name := range table.Columns {
		cols[cleanColumnName(name)] = i
	}

	required := []string{ColCommodity, ColSupplier, ColQuantity, ColSpend}
	idx := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: required column %q missing from source", entities.ErrData, name)
		}
		idx[name] = i
	}

	var records []entities.CleanRecord
	for rowIdx, row := range table.Rows {
		commodity, ok := cellAt(row, idx[ColCommodity])
		if !ok {
			continue
		}
		supplier, ok := cellAt(row, idx[ColSupplier])
		if !ok {
			continue
		}
		quantity, ok := numericCellAt(row, idx[ColQuantity])
		if !ok || quantity <= 0 {
			continue
		}
		spend, ok := numericCellAt(row, idx[ColSpend])
		if !ok {
			continue
		}

		records = append(records, entities.CleanRecord{
			Commodity:  commodity,
			Supplier:   supplier,
			QuantityKG: quantity,
			SpendUSD:   spend,
			PricePerKG: spend / quantity,
			RowIndex:   rowIdx,
		})
	}

	return records, nil
}

// cleanColumnName strips stray whitespace and byte-order marks.
func cleanColumnName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "\ufeff", ""))
}

// cellAt returns the trimmed value at position i, reporting whether it is present and non-empty.
func cellAt(row []string, i int) (string, bool) {
	if i >= len(row) {
		return "", false
	}
	v := strings.TrimSpace(row[i])
	return v, v != ""
}

// numericCellAt coerces the value at position i to a float.
// Non-numeric and non-finite values count as null.
func numericCellAt(row []string, i int) (float64, bool) {
	v, ok := cellAt(row, i)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
