package ledger

// Mode is the editor's current state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAdding
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeAdding:
		return "adding"
	case ModeEditing:
		return "editing"
	}
	return "unknown"
}

// Editor is the form state machine for one ledger. Exactly one add or edit
// may be in progress at a time; starting a second one before commit or cancel
// would silently drop the staged values, so it is rejected instead.
// Transitions: idle -> adding -> idle and idle -> editing -> idle.
type Editor struct {
	mode   Mode
	editID string
	staged Candidate
}

// NewEditor returns an idle editor with nothing staged.
func NewEditor() *Editor {
	return &Editor{}
}

// Mode returns the current state.
func (e *Editor) Mode() Mode {
	return e.mode
}

// EditingID returns the id being edited, empty unless in editing mode.
func (e *Editor) EditingID() string {
	if e.mode != ModeEditing {
		return ""
	}
	return e.editID
}

// Staged returns a copy of the staged field values.
func (e *Editor) Staged() Candidate {
	return e.staged
}

// BeginAdd starts staging a new item. Only valid while idle.
func (e *Editor) BeginAdd() error {
	if e.mode != ModeIdle {
		return &InvalidStateError{Op: "begin add", Mode: e.mode}
	}
	e.mode = ModeAdding
	e.staged = Candidate{}
	return nil
}

// BeginEdit starts editing an existing item, pre-filling the staged fields
// from the current snapshot. Only valid while idle.
func (e *Editor) BeginEdit(l Ledger, id string) error {
	if e.mode != ModeIdle {
		return &InvalidStateError{Op: "begin edit", Mode: e.mode}
	}
	item, ok := l.Get(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	e.mode = ModeEditing
	e.editID = id
	e.staged = Candidate{
		CategoryID: item.CategoryID,
		Label:      item.Label,
		Amount:     item.Amount.String(),
		Frequency:  string(item.Frequency),
	}
	return nil
}

// SetField stages one field value. Errors while idle rather than silently
// dropping input: a stray write with no add or edit in progress is a caller
// bug worth surfacing.
func (e *Editor) SetField(key, value string) error {
	if e.mode == ModeIdle {
		return &InvalidStateError{Op: "set field", Mode: e.mode}
	}
	switch key {
	case "category_id":
		e.staged.CategoryID = value
	case "label":
		e.staged.Label = value
	case "amount":
		e.staged.Amount = value
	case "frequency":
		e.staged.Frequency = value
	default:
		return &ValidationError{Field: key, Reason: "unknown field"}
	}
	return nil
}

// Commit validates the staged values and applies them to the ledger: Add in
// adding mode, Update in editing mode. On success the editor returns to idle
// and the new snapshot plus affected item are returned. On validation failure
// the editor keeps its mode and staged values and the ledger is unchanged.
func (e *Editor) Commit(l Ledger) (Ledger, LineItem, error) {
	switch e.mode {
	case ModeAdding:
		next, item, err := l.Add(e.staged)
		if err != nil {
			return l, LineItem{}, err
		}
		e.reset()
		return next, item, nil
	case ModeEditing:
		p := Patch{
			CategoryID: &e.staged.CategoryID,
			Label:      &e.staged.Label,
			Amount:     &e.staged.Amount,
			Frequency:  &e.staged.Frequency,
		}
		next, item, err := l.Update(e.editID, p)
		if err != nil {
			return l, LineItem{}, err
		}
		e.reset()
		return next, item, nil
	}
	return l, LineItem{}, &InvalidStateError{Op: "commit", Mode: e.mode}
}

// Cancel discards staged values and returns to idle. Never errors.
func (e *Editor) Cancel() {
	e.reset()
}

func (e *Editor) reset() {
	e.mode = ModeIdle
	e.editID = ""
	e.staged = Candidate{}
}
