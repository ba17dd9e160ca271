// Package usecases - chunks.go converts clean records into retrievable text chunks.
package usecases

import (
	"fmt"
	"strconv"
	"strings"

	"spendchat/internal/domain/entities"
)

// chunkIDPrefix keeps chunk IDs stable and unique: prefix plus source row index.
const chunkIDPrefix = "row_"

// ViewFunc renders one natural-language perspective of a record.
// Multiple phrasings of the same record raise recall for differently
// worded queries against a single embedding space.
type ViewFunc func(rec entities.CleanRecord) string

// DefaultViews returns the standard perspectives: a primary description,
// a supplier-centric sentence and a cost-centric sentence.
func DefaultViews() []ViewFunc {
	return []ViewFunc{PrimaryView, SupplierView, CostView}
}

// PrimaryView names commodity, supplier, quantity, spend and unit price.
func PrimaryView(rec entities.CleanRecord) string {
	return fmt.Sprintf("Commodity: %s. Top Supplier: %s. Quantity Purchased: %s kilograms. Total Spend: %s USD. Price per kilogram: %s.",
		rec.Commodity, rec.Supplier, formatQuantity(rec.QuantityKG), formatUSD(rec.SpendUSD), formatUSD(rec.PricePerKG))
}

// SupplierView leads with the supplier for supplier-focused questions.
func SupplierView(rec entities.CleanRecord) string {
	return fmt.Sprintf("%s supplies %s, with %s kg purchased for %s.",
		rec.Supplier, rec.Commodity, formatQuantity(rec.QuantityKG), formatUSD(rec.SpendUSD))
}

// CostView leads with spend and unit price for cost-focused questions.
func CostView(rec entities.CleanRecord) string {
	return fmt.Sprintf("The spend on %s is %s, sourced from %s at %s per kg.",
		rec.Commodity, formatUSD(rec.SpendUSD), rec.Supplier, formatUSD(rec.PricePerKG))
}

// ChunkBuilder turns clean records into chunks, one per record, in source order.
type ChunkBuilder struct {
	views []ViewFunc
}

// NewChunkBuilder creates a ChunkBuilder with the given views.
// With no views it falls back to DefaultViews.
func NewChunkBuilder(views ...ViewFunc) *ChunkBuilder {
	if len(views) == 0 {
		views = DefaultViews()
	}
	return &ChunkBuilder{views: views}
}

// Build emits one chunk per record. Output order equals input order and
// chunk IDs are reproducible across runs on identical input.
func (b *ChunkBuilder) Build(records []entities.CleanRecord) []entities.Chunk {
	chunks := make([]entities.Chunk, len(records))
	for i, rec := range records {
		parts := make([]string, len(b.views))
		for j, view := range b.views {
			parts[j] = view(rec)
		}

		chunks[i] = entities.Chunk{
			ID:   chunkIDPrefix + strconv.Itoa(rec.RowIndex),
			Text: strings.Join(parts, " "),
			Metadata: entities.ChunkMetadata{
				Commodity:  rec.Commodity,
				Supplier:   rec.Supplier,
				QuantityKG: rec.QuantityKG,
				SpendUSD:   rec.SpendUSD,
				PricePerKG: rec.PricePerKG,
				RowIndex:   rec.RowIndex,
			},
		}
	}
	return chunks
}

// formatUSD renders a dollar amount with two decimals and thousands
// separators, e.g. $1,234.56.
func formatUSD(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]

	var sb strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}

	out := "$" + sb.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// formatQuantity renders a quantity without trailing zeros, e.g. 1000 or 12.5.
func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
