package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/loomwright/dayloop/internal/types"
	"github.com/loomwright/dayloop/internal/workspace/storage"
)

// SaveTo persists the workspace as a single document through a
// storage.Storage backend (spec §6's "single structured document").
func (w *Workspace) SaveTo(store storage.Storage) error {
	return store.SaveDocument(w.Snapshot())
}

// LoadFrom rebuilds a workspace from a document fetched by id from a
// storage.Storage backend.
func LoadFrom(store storage.Storage, id string) (*Workspace, error) {
	doc, err := store.GetDocument(id)
	if err != nil {
		return nil, err
	}
	return Load(doc)
}

// projectConfig is the config.yaml file of the split on-disk layout: the
// document's identity fields plus free-form settings, everything that
// isn't the graph/loops/classes/knowledge collections.
type projectConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	CreatedAt   string            `yaml:"created_at"`
	UpdatedAt   string            `yaml:"updated_at"`
	Settings    map[string]string `yaml:"settings,omitempty"`
	Epochs      []*types.Epoch    `yaml:"epochs,omitempty"`
}

const (
	configFileName    = "config.yaml"
	graphFileName     = "graph.json"
	loopsFileName     = "loops.json"
	classesFileName   = "equivalence_classes.json"
	knowledgeFileName = "knowledge_states.json"
)

// SaveSplit writes the project artifact as the split on-disk layout (spec
// §6: "semantically equivalent" to the single document) into dir: config
// (YAML, matching the teacher's config-file convention), graph, loops,
// equivalence_classes, and knowledge_states (each JSON).
func (w *Workspace) SaveSplit(dir string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}
	doc := w.Snapshot()

	cfg := projectConfig{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt.Format(rfc3339),
		UpdatedAt:   doc.UpdatedAt.Format(rfc3339),
		Settings:    doc.Settings,
		Epochs:      doc.Epochs,
	}
	if err := writeYAML(filepath.Join(dir, configFileName), cfg); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, graphFileName), doc.Graph); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, loopsFileName), doc.Loops); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, classesFileName), doc.EquivalenceClasses); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, knowledgeFileName), doc.KnowledgeStates); err != nil {
		return err
	}
	return nil
}

// LoadSplit rebuilds a workspace from the split on-disk layout written by
// SaveSplit.
func LoadSplit(dir string) (*Workspace, error) {
	var cfg projectConfig
	if err := readYAML(filepath.Join(dir, configFileName), &cfg); err != nil {
		return nil, err
	}

	var dg types.DocumentGraph
	if err := readJSON(filepath.Join(dir, graphFileName), &dg); err != nil {
		return nil, err
	}
	var loops []*types.Loop
	if err := readJSON(filepath.Join(dir, loopsFileName), &loops); err != nil {
		return nil, err
	}
	var classes []*types.EquivalenceClass
	if err := readJSON(filepath.Join(dir, classesFileName), &classes); err != nil {
		return nil, err
	}
	var knowledge []*types.KnowledgeState
	if err := readJSON(filepath.Join(dir, knowledgeFileName), &knowledge); err != nil {
		return nil, err
	}

	createdAt, err := parseTime(cfg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("config created_at: %w", err)
	}
	updatedAt, err := parseTime(cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("config updated_at: %w", err)
	}

	doc := &types.Document{
		ID:                 cfg.ID,
		Name:               cfg.Name,
		Description:        cfg.Description,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
		Graph:              dg,
		Epochs:             cfg.Epochs,
		Loops:              loops,
		EquivalenceClasses: classes,
		KnowledgeStates:    knowledge,
		Settings:           cfg.Settings,
	}
	return Load(doc)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
