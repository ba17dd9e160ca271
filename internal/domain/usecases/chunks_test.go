package usecases

import (
	"strings"
	"testing"

	"spendchat/internal/domain/entities"
)

func sampleRecords() []entities.CleanRecord {
	return []entities.CleanRecord{
		{Commodity: "Sugar", Supplier: "AcmeCo", QuantityKG: 1000, SpendUSD: 500, PricePerKG: 0.50, RowIndex: 0},
		{Commodity: "Cocoa", Supplier: "BeanCorp", QuantityKG: 250, SpendUSD: 875.50, PricePerKG: 3.502, RowIndex: 2},
	}
}

func TestChunkBuilder_OneChunkPerRecord(t *testing.T) {
	b := NewChunkBuilder()
	chunks := b.Build(sampleRecords())

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestChunkBuilder_ScenarioText(t *testing.T) {
	b := NewChunkBuilder()
	chunks := b.Build(sampleRecords())

	text := chunks[0].Text
	for _, want := range []string{"Sugar", "AcmeCo", "1000", "$500.00", "$0.50"} {
		if !strings.Contains(text, want) {
			t.Errorf("chunk text missing %q: %s", want, text)
		}
	}
}

func TestChunkBuilder_StableIDs(t *testing.T) {
	b := NewChunkBuilder()
	first := b.Build(sampleRecords())
	second := b.Build(sampleRecords())

	if first[0].ID != "row_0" || first[1].ID != "row_2" {
		t.Errorf("unexpected ids: %s, %s", first[0].ID, first[1].ID)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Error("ids must be stable across repeated builds")
		}
	}

	seen := map[string]bool{}
	for _, c := range first {
		if seen[c.ID] {
			t.Errorf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestChunkBuilder_MetadataMirrorsRecord(t *testing.T) {
	b := NewChunkBuilder()
	chunks := b.Build(sampleRecords())

	md := chunks[1].Metadata
	if md.Commodity != "Cocoa" || md.Supplier != "BeanCorp" {
		t.Errorf("categorical metadata wrong: %+v", md)
	}
	if md.QuantityKG != 250 || md.SpendUSD != 875.50 || md.RowIndex != 2 {
		t.Errorf("numeric metadata wrong: %+v", md)
	}
}

func TestChunkBuilder_ViewsAreReplaceable(t *testing.T) {
	short := func(rec entities.CleanRecord) string { return rec.Commodity }
	upper := func(rec entities.CleanRecord) string { return strings.ToUpper(rec.Supplier) }

	b := NewChunkBuilder(short, upper)
	chunks := b.Build(sampleRecords())

	if chunks[0].Text != "Sugar ACMECO" {
		t.Errorf("custom views not applied: %s", chunks[0].Text)
	}
}

func TestChunkBuilder_AllViewsPresent(t *testing.T) {
	b := NewChunkBuilder()
	text := b.Build(sampleRecords())[0].Text

	// The three default perspectives each contribute a distinct phrasing.
	for _, marker := range []string{"Commodity: Sugar", "AcmeCo supplies Sugar", "The spend on Sugar"} {
		if !strings.Contains(text, marker) {
			t.Errorf("missing view marker %q", marker)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{500, "$500.00"},
		{0.5, "$0.50"},
		{1234.56, "$1,234.56"},
		{1234567.8, "$1,234,567.80"},
	}
	for _, c := range cases {
		if got := formatUSD(c.in); got != c.want {
			t.Errorf("formatUSD(%f) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := formatQuantity(1000); got != "1000" {
		t.Errorf("expected 1000, got %s", got)
	}
	if got := formatQuantity(12.5); got != "12.5" {
		t.Errorf("expected 12.5, got %s", got)
	}
}
