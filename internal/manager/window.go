package manager

import "cmemo/internal/state"

// MemoWindow is the collaborator interface implemented by the UI layer: one
// floating note window. The manager owns the id-to-window mapping; a window
// owns only its live record and hands a snapshot back on demand.
type MemoWindow interface {
	ID() string
	Snapshot() state.MemoRecord
	Apply(rec state.MemoRecord)
	ApplyStyle(global state.GlobalSettings)
	Close()
}

// WindowFactory constructs a window for a fresh or restored record.
type WindowFactory func(id string, rec state.MemoRecord, global state.GlobalSettings) MemoWindow

// recordWindow is the headless stand-in used when no UI layer is attached:
// it just holds the record.
type recordWindow struct {
	id  string
	rec state.MemoRecord
}

func newRecordWindow(id string, rec state.MemoRecord, _ state.GlobalSettings) MemoWindow {
	return &recordWindow{id: id, rec: rec}
}

func (w *recordWindow) ID() string                      { return w.id }
func (w *recordWindow) Snapshot() state.MemoRecord      { return w.rec }
func (w *recordWindow) Apply(rec state.MemoRecord)      { w.rec = rec }
func (w *recordWindow) ApplyStyle(state.GlobalSettings) {}
func (w *recordWindow) Close()                          {}
