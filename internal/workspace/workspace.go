// Package workspace owns the live, in-memory project state — one day
// graph, its loops and knowledge states, the equivalence classes they
// cluster into, and its epochs — and the (de)serialization of that state
// to and from the persisted project artifact (spec §6).
//
// Modeled on the teacher's repository-interface discipline
// (storage.Storage): a Workspace is the explicit value type replacing the
// teacher's module-level MemoryStorage/SQLiteStorage singletons. All
// mutation enters through its owned components — daygraph.Graph,
// loopstore.Store, equivalence.Index — never direct map pokes.
package workspace

import (
	"fmt"
	"time"

	"github.com/loomwright/dayloop/internal/daygraph"
	"github.com/loomwright/dayloop/internal/engineerr"
	"github.com/loomwright/dayloop/internal/equivalence"
	"github.com/loomwright/dayloop/internal/loopstore"
	"github.com/loomwright/dayloop/internal/types"
)

// Workspace is one project: a day graph plus every loop, knowledge state,
// and equivalence class recorded against it, organized into author-defined
// epochs.
type Workspace struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Graph       *daygraph.Graph
	Loops       *loopstore.Store
	Equivalence *equivalence.Index

	epochs   map[string]*types.Epoch
	settings map[string]string
}

// New creates an empty workspace around a fresh day graph.
func New(id, name string, bounds types.TimeBounds) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:          id,
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
		Graph:       daygraph.New(id, name, bounds),
		Loops:       loopstore.New(),
		Equivalence: equivalence.New(),
		epochs:      make(map[string]*types.Epoch),
		settings:    make(map[string]string),
	}
}

// Touch stamps UpdatedAt to now. Callers invoke this after any mutation
// that should be reflected in the persisted artifact's updated_at field.
func (w *Workspace) Touch() {
	w.UpdatedAt = time.Now()
}

// PutEpoch creates or replaces an epoch.
func (w *Workspace) PutEpoch(e *types.Epoch) {
	if w.epochs == nil {
		w.epochs = make(map[string]*types.Epoch)
	}
	cp := *e
	w.epochs[e.ID] = &cp
	w.Touch()
}

// Epoch retrieves an epoch by id.
func (w *Workspace) Epoch(id string) (*types.Epoch, bool) {
	e, ok := w.epochs[id]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

// Epochs returns every epoch, ordered by their author-declared Order.
func (w *Workspace) Epochs() []*types.Epoch {
	out := make([]*types.Epoch, 0, len(w.epochs))
	for _, e := range w.epochs {
		cp := *e
		out = append(out, &cp)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Order > out[j].Order; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// RemoveEpoch deletes an epoch by id.
func (w *Workspace) RemoveEpoch(id string) error {
	if _, ok := w.epochs[id]; !ok {
		return engineerr.Newf(engineerr.UnknownId, "epoch %q not found", id)
	}
	delete(w.epochs, id)
	w.Touch()
	return nil
}

// Setting returns a free-form project setting.
func (w *Workspace) Setting(key string) (string, bool) {
	v, ok := w.settings[key]
	return v, ok
}

// SetSetting stores a free-form project setting (e.g. default narrative
// tone, resolution-mode weights).
func (w *Workspace) SetSetting(key, value string) {
	if w.settings == nil {
		w.settings = make(map[string]string)
	}
	w.settings[key] = value
	w.Touch()
}

// Settings returns a copy of every setting.
func (w *Workspace) Settings() map[string]string {
	out := make(map[string]string, len(w.settings))
	for k, v := range w.settings {
		out[k] = v
	}
	return out
}

// Validate runs the day graph's structural validation. Consistency
// (contradiction) checking lives in internal/consistency and is run
// separately, since it inspects loops and knowledge states rather than
// graph structure alone.
func (w *Workspace) Validate() *daygraph.Report {
	return w.Graph.Validate()
}

// ExportDOT renders the day graph as Graphviz DOT source (spec §6).
func (w *Workspace) ExportDOT() string {
	return w.Graph.ExportDOT()
}

// ExportMermaid renders the day graph as Mermaid flowchart source (spec §6).
func (w *Workspace) ExportMermaid() string {
	return w.Graph.ExportMermaid()
}

func (w *Workspace) String() string {
	return fmt.Sprintf("Workspace{id=%s name=%q loops=%d classes=%d epochs=%d}",
		w.ID, w.Name, len(w.Loops.List()), len(w.Equivalence.All()), len(w.epochs))
}
