package ledger

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a single expense or income entry. AnnualTotal is derived:
// the ledger recomputes it on every mutation and never trusts a stored or
// wire value. For every item in every snapshot,
// AnnualTotal == Amount * multiplier(Frequency).
type LineItem struct {
	ID          string
	CategoryID  string
	Label       string
	Amount      decimal.Decimal
	Frequency   Frequency
	AnnualTotal decimal.Decimal
}

// Candidate carries raw field values as typed into a form. Amounts arrive as
// strings; parsing and validation happen once, at the ledger boundary.
type Candidate struct {
	CategoryID string
	Label      string
	Amount     string
	Frequency  string
}

// Patch is a partial update. Nil fields keep the existing value.
type Patch struct {
	CategoryID *string
	Label      *string
	Amount     *string
	Frequency  *string
}

// Ledger is the authoritative local collection of line items for one editing
// session. It is an immutable value: mutating operations return a new
// snapshot and leave the receiver untouched.
type Ledger struct {
	mult  Multipliers
	items map[string]LineItem
}

// New returns an empty ledger using the given multiplier table, or the
// default table when mult is nil.
func New(mult Multipliers) Ledger {
	if mult == nil {
		mult = DefaultMultipliers()
	}
	return Ledger{mult: mult, items: map[string]LineItem{}}
}

func (l Ledger) clone() map[string]LineItem {
	out := make(map[string]LineItem, len(l.items))
	for k, v := range l.items {
		out[k] = v
	}
	return out
}

// normalize collapses a raw candidate into a canonical item (without ID).
func (l Ledger) normalize(c Candidate) (LineItem, error) {
	cat := strings.TrimSpace(c.CategoryID)
	if cat == "" {
		return LineItem{}, &ValidationError{Field: "category_id", Reason: "required"}
	}
	amtStr := strings.TrimSpace(c.Amount)
	if amtStr == "" {
		return LineItem{}, &ValidationError{Field: "amount", Reason: "required"}
	}
	amt, err := decimal.NewFromString(amtStr)
	if err != nil {
		return LineItem{}, &ValidationError{Field: "amount", Reason: "not a number"}
	}
	if !amt.IsPositive() {
		return LineItem{}, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	freq := NormalizeFrequency(c.Frequency)
	return LineItem{
		CategoryID:  cat,
		Label:       strings.TrimSpace(c.Label),
		Amount:      amt,
		Frequency:   freq,
		AnnualTotal: l.mult.AnnualTotal(amt, freq),
	}, nil
}

// Add validates the candidate, assigns a fresh id, computes the annual total
// and returns the grown snapshot together with the new item.
func (l Ledger) Add(c Candidate) (Ledger, LineItem, error) {
	item, err := l.normalize(c)
	if err != nil {
		return l, LineItem{}, err
	}
	item.ID = uuid.NewString()
	items := l.clone()
	items[item.ID] = item
	return Ledger{mult: l.mult, items: items}, item, nil
}

// Update merges the patch into the existing item and recomputes the annual
// total from the merged amount and frequency. A label-only patch leaves
// amount, frequency and annual total unchanged.
func (l Ledger) Update(id string, p Patch) (Ledger, LineItem, error) {
	existing, ok := l.items[id]
	if !ok {
		return l, LineItem{}, &NotFoundError{ID: id}
	}

	merged := Candidate{
		CategoryID: existing.CategoryID,
		Label:      existing.Label,
		Amount:     existing.Amount.String(),
		Frequency:  string(existing.Frequency),
	}
	if p.CategoryID != nil {
		merged.CategoryID = *p.CategoryID
	}
	if p.Label != nil {
		merged.Label = *p.Label
	}
	if p.Amount != nil {
		merged.Amount = *p.Amount
	}
	if p.Frequency != nil {
		merged.Frequency = *p.Frequency
	}

	item, err := l.normalize(merged)
	if err != nil {
		return l, LineItem{}, err
	}
	item.ID = id
	items := l.clone()
	items[id] = item
	return Ledger{mult: l.mult, items: items}, item, nil
}

// Remove deletes the item. A missing id is an error, not a no-op: repeating
// a remove means the caller's view of the ledger is stale and should be
// surfaced rather than swallowed.
func (l Ledger) Remove(id string) (Ledger, error) {
	if _, ok := l.items[id]; !ok {
		return l, &NotFoundError{ID: id}
	}
	items := l.clone()
	delete(items, id)
	return Ledger{mult: l.mult, items: items}, nil
}

// Replace overwrites the ledger with an externally supplied snapshot.
// Annual totals are recomputed locally; the wire value is display-only.
// Items without an id get one assigned. Reserved for the reconciler and
// initial load, never for direct user actions.
func (l Ledger) Replace(external []LineItem) Ledger {
	items := make(map[string]LineItem, len(external))
	for _, it := range external {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.Frequency = NormalizeFrequency(string(it.Frequency))
		it.AnnualTotal = l.mult.AnnualTotal(it.Amount, it.Frequency)
		items[it.ID] = it
	}
	return Ledger{mult: l.mult, items: items}
}

// Merge key-unions an external snapshot into the ledger. Local values win on
// conflicting ids: local is authoritative for anything it has touched.
func (l Ledger) Merge(external []LineItem) Ledger {
	items := make(map[string]LineItem, len(l.items)+len(external))
	for _, it := range external {
		if it.ID == "" {
			continue
		}
		it.Frequency = NormalizeFrequency(string(it.Frequency))
		it.AnnualTotal = l.mult.AnnualTotal(it.Amount, it.Frequency)
		items[it.ID] = it
	}
	for k, v := range l.items {
		items[k] = v
	}
	return Ledger{mult: l.mult, items: items}
}

// Get returns the item with the given id.
func (l Ledger) Get(id string) (LineItem, bool) {
	it, ok := l.items[id]
	return it, ok
}

// Len returns the number of line items.
func (l Ledger) Len() int {
	return len(l.items)
}

// Total sums the annual totals of all items. Zero for an empty ledger.
func (l Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.items {
		total = total.Add(it.AnnualTotal)
	}
	return total
}

// Items returns the line items ordered by category, label, then id so that
// repeated reads of the same snapshot render identically.
func (l Ledger) Items() []LineItem {
	out := make([]LineItem, 0, len(l.items))
	for _, it := range l.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CategoryID != out[j].CategoryID {
			return out[i].CategoryID < out[j].CategoryID
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SameKeys reports whether the ledger and the external snapshot hold exactly
// the same set of item ids.
func (l Ledger) SameKeys(external []LineItem) bool {
	if len(external) != len(l.items) {
		return false
	}
	for _, it := range external {
		if _, ok := l.items[it.ID]; !ok {
			return false
		}
	}
	return true
}

// Multipliers exposes the table the ledger computes annual totals with.
func (l Ledger) Multipliers() Multipliers {
	return l.mult
}
