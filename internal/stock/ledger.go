package stock

import (
	"iter"
	"sort"
	"time"
)

// Ledger entry kinds, matching the movement labels shown on the dashboard.
const (
	KindOpening    = "Opening Stock"
	KindIn         = "Stock In"
	KindOut        = "Stock Out"
	KindAdjustment = "Adjustment"
)

// LedgerEntry is one normalised row of the product-wise movement ledger.
// Quantity is signed: receipts and increases are positive, consumption and
// decreases negative. Balance is the running cumulative sum up to this row.
type LedgerEntry struct {
	At        time.Time
	Kind      string
	Quantity  float64
	Unit      string
	Reference string
	Remarks   string
	Balance   float64
}

// LedgerTotals summarises a ledger.
type LedgerTotals struct {
	Opening      float64
	TotalIn      float64
	TotalOut     float64
	TotalAdjust  float64
	FinalBalance float64
}

// Ledger is a derived, recomputed-on-read view of a product's movement
// history. The running balance it yields is independent of the stored live
// quantity, which the three mutation paths maintain on their own.
type Ledger struct {
	ProductID int64
	Name      string
	Unit      string
	Opening   float64
	entries   []LedgerEntry
}

func buildLedger(product ProductStock, movements []Movement, adjustments []Adjustment) *Ledger {
	entries := make([]LedgerEntry, 0, len(movements)+len(adjustments))
	for _, m := range movements {
		entry := LedgerEntry{
			At:        m.CreatedAt,
			Reference: m.Reference,
			Remarks:   m.Remarks,
			Unit:      product.Unit,
		}
		if m.Type == MovementIn {
			entry.Kind = KindIn
			entry.Quantity = m.Quantity
		} else {
			entry.Kind = KindOut
			entry.Quantity = -m.Quantity
		}
		entries = append(entries, entry)
	}
	for _, a := range adjustments {
		// Adjustment sign follows its own Increase/Decrease tag, not the
		// raw movement convention.
		qty := a.Quantity
		if a.Type == AdjustmentDecrease {
			qty = -a.Quantity
		}
		entries = append(entries, LedgerEntry{
			At:        a.CreatedAt,
			Kind:      KindAdjustment,
			Quantity:  qty,
			Unit:      product.Unit,
			Reference: "Adjusted by " + a.AdjustedBy,
			Remarks:   a.Reason,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})
	return &Ledger{
		ProductID: product.ProductID,
		Name:      product.Name,
		Unit:      product.Unit,
		Opening:   product.OpeningQty,
		entries:   entries,
	}
}

// All yields the ledger rows in chronological order, prefixed with the
// synthetic opening entry, computing the running balance as it goes. The
// sequence is finite and can be ranged over any number of times.
func (l *Ledger) All() iter.Seq[LedgerEntry] {
	return func(yield func(LedgerEntry) bool) {
		balance := l.Opening
		if !yield(LedgerEntry{
			Kind:     KindOpening,
			Quantity: l.Opening,
			Unit:     l.Unit,
			Balance:  balance,
		}) {
			return
		}
		for _, entry := range l.entries {
			balance += entry.Quantity
			entry.Balance = balance
			if !yield(entry) {
				return
			}
		}
	}
}

// Entries materialises the full ledger including the opening row.
func (l *Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.entries)+1)
	for entry := range l.All() {
		out = append(out, entry)
	}
	return out
}

// Totals walks the ledger once and summarises it.
func (l *Ledger) Totals() LedgerTotals {
	totals := LedgerTotals{Opening: l.Opening, FinalBalance: l.Opening}
	for entry := range l.All() {
		switch entry.Kind {
		case KindIn:
			totals.TotalIn += entry.Quantity
		case KindOut:
			totals.TotalOut += entry.Quantity
		case KindAdjustment:
			totals.TotalAdjust += entry.Quantity
		}
		totals.FinalBalance = entry.Balance
	}
	return totals
}
