package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func stageItem(t *testing.T, e *Editor, c Candidate) {
	t.Helper()
	fields := map[string]string{
		"category_id": c.CategoryID,
		"label":       c.Label,
		"amount":      c.Amount,
		"frequency":   c.Frequency,
	}
	for k, v := range fields {
		if err := e.SetField(k, v); err != nil {
			t.Fatalf("SetField(%q, %q) error = %v", k, v, err)
		}
	}
}

func TestEditor_AddFlow(t *testing.T) {
	l := New(nil)
	e := NewEditor()

	if err := e.BeginAdd(); err != nil {
		t.Fatalf("BeginAdd error = %v", err)
	}
	stageItem(t, e, Candidate{CategoryID: "rates", Label: "council", Amount: "1000", Frequency: "quarterly"})

	next, item, err := e.Commit(l)
	if err != nil {
		t.Fatalf("Commit error = %v", err)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode after commit = %s, want idle", e.Mode())
	}
	if !item.AnnualTotal.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("AnnualTotal = %s, want 4000", item.AnnualTotal)
	}
	if next.Len() != 1 {
		t.Errorf("Len = %d, want 1", next.Len())
	}
}

func TestEditor_DoubleBeginRejected(t *testing.T) {
	e := NewEditor()

	if err := e.BeginAdd(); err != nil {
		t.Fatalf("first BeginAdd error = %v", err)
	}
	if err := e.SetField("amount", "42"); err != nil {
		t.Fatalf("SetField error = %v", err)
	}

	err := e.BeginAdd()
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("second BeginAdd error = %v, want InvalidStateError", err)
	}
	if got := e.Staged().Amount; got != "42" {
		t.Errorf("staged amount after rejected begin = %q, want %q", got, "42")
	}
}

func TestEditor_BeginEditPrefills(t *testing.T) {
	l := New(nil)
	l, item := mustAdd(t, l, Candidate{CategoryID: "water", Label: "usage", Amount: "80", Frequency: "quarterly"})
	e := NewEditor()

	if err := e.BeginEdit(l, item.ID); err != nil {
		t.Fatalf("BeginEdit error = %v", err)
	}
	staged := e.Staged()
	if staged.Amount != "80" || staged.CategoryID != "water" || staged.Frequency != "quarterly" {
		t.Errorf("staged = %+v, want prefilled from item", staged)
	}
	if e.EditingID() != item.ID {
		t.Errorf("EditingID = %q, want %q", e.EditingID(), item.ID)
	}
}

func TestEditor_BeginEditMissing(t *testing.T) {
	e := NewEditor()
	err := e.BeginEdit(New(nil), "nope")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("BeginEdit(missing) error = %v, want NotFoundError", err)
	}
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %s, want idle", e.Mode())
	}
}

func TestEditor_EditFlow(t *testing.T) {
	l := New(nil)
	l, item := mustAdd(t, l, Candidate{CategoryID: "water", Amount: "80", Frequency: "quarterly"})
	e := NewEditor()

	if err := e.BeginEdit(l, item.ID); err != nil {
		t.Fatalf("BeginEdit error = %v", err)
	}
	if err := e.SetField("amount", "120"); err != nil {
		t.Fatalf("SetField error = %v", err)
	}

	next, updated, err := e.Commit(l)
	if err != nil {
		t.Fatalf("Commit error = %v", err)
	}
	if updated.ID != item.ID {
		t.Errorf("updated id = %q, want %q", updated.ID, item.ID)
	}
	if !updated.AnnualTotal.Equal(decimal.NewFromInt(480)) {
		t.Errorf("AnnualTotal = %s, want 480", updated.AnnualTotal)
	}
	if next.Len() != 1 {
		t.Errorf("Len = %d, want 1", next.Len())
	}
}

func TestEditor_SetFieldWhileIdle(t *testing.T) {
	e := NewEditor()
	err := e.SetField("amount", "10")
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Errorf("SetField while idle error = %v, want InvalidStateError", err)
	}
}

func TestEditor_SetFieldUnknownKey(t *testing.T) {
	e := NewEditor()
	if err := e.BeginAdd(); err != nil {
		t.Fatalf("BeginAdd error = %v", err)
	}
	err := e.SetField("color", "red")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("SetField(unknown) error = %v, want ValidationError", err)
	}
}

func TestEditor_CommitValidationKeepsState(t *testing.T) {
	l := New(nil)
	e := NewEditor()

	if err := e.BeginAdd(); err != nil {
		t.Fatalf("BeginAdd error = %v", err)
	}
	stageItem(t, e, Candidate{CategoryID: "", Amount: "100", Frequency: "monthly"})

	next, _, err := e.Commit(l)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Commit error = %v, want ValidationError", err)
	}
	if e.Mode() != ModeAdding {
		t.Errorf("Mode after failed commit = %s, want adding", e.Mode())
	}
	if got := e.Staged().Amount; got != "100" {
		t.Errorf("staged amount after failed commit = %q, want kept", got)
	}
	if next.Len() != 0 {
		t.Errorf("failed commit mutated ledger: Len = %d", next.Len())
	}
}

func TestEditor_CommitWhileIdle(t *testing.T) {
	e := NewEditor()
	_, _, err := e.Commit(New(nil))
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Errorf("Commit while idle error = %v, want InvalidStateError", err)
	}
}

func TestEditor_CancelAlwaysReturnsToIdle(t *testing.T) {
	e := NewEditor()

	e.Cancel() // cancel while idle is fine
	if e.Mode() != ModeIdle {
		t.Errorf("Mode = %s, want idle", e.Mode())
	}

	if err := e.BeginAdd(); err != nil {
		t.Fatalf("BeginAdd error = %v", err)
	}
	if err := e.SetField("amount", "5"); err != nil {
		t.Fatalf("SetField error = %v", err)
	}
	e.Cancel()
	if e.Mode() != ModeIdle {
		t.Errorf("Mode after cancel = %s, want idle", e.Mode())
	}
	if e.Staged().Amount != "" {
		t.Error("staged data survived cancel")
	}
	if err := e.BeginAdd(); err != nil {
		t.Errorf("BeginAdd after cancel error = %v, want nil", err)
	}
}
