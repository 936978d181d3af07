// Package script replays drag-and-drop gestures from YAML files.
//
// A script names the starting lists, a sequence of gesture steps and the
// lists it expects at the end:
//
//	name: cross-list move
//	lists:
//	  in-progress: [A, B]
//	  completed: [C]
//	steps:
//	  - pickup: {from: in-progress, index: 0}
//	  - drop: {to: completed, index: 1}
//	  - end: true
//	expect:
//	  in-progress: [B]
//	  completed: [C, A]
//
// Step actions: pickup, drop, end, abandon, paste (plain text dropped from
// outside), import (a typed payload loaded asynchronously) and resolve (apply
// imports held with defer).
package script

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"

	"cachemaker/internal/catalog"
	"cachemaker/internal/model"

	"gopkg.in/yaml.v3"
)

type Script struct {
	Name   string              `yaml:"name"`
	Lists  map[string][]string `yaml:"lists,omitempty"`
	Steps  []Step              `yaml:"steps"`
	Expect map[string][]string `yaml:"expect,omitempty"`
}

// Step holds exactly one action. Error, when set, is a substring the step's
// error must contain; the step is then expected to fail.
type Step struct {
	PickUp  *PickUpStep `yaml:"pickup,omitempty"`
	Drop    *DropStep   `yaml:"drop,omitempty"`
	End     bool        `yaml:"end,omitempty"`
	Abandon bool        `yaml:"abandon,omitempty"`
	Paste   *PasteStep  `yaml:"paste,omitempty"`
	Import  *ImportStep `yaml:"import,omitempty"`
	Resolve bool        `yaml:"resolve,omitempty"`

	Error string `yaml:"error,omitempty"`
}

type PickUpStep struct {
	From  string `yaml:"from"`
	Index int    `yaml:"index"`
}

// DropStep drops the picked-up item. A missing index drops below the last row.
type DropStep struct {
	To    string `yaml:"to"`
	Index *int   `yaml:"index,omitempty"`
}

type PasteStep struct {
	To    string `yaml:"to"`
	Index *int   `yaml:"index,omitempty"`
	Text  string `yaml:"text"`
}

// ImportStep drops a payload that has to be loaded first. With Defer the
// loaded item is held until a resolve step, so later steps can change the
// destination in between.
type ImportStep struct {
	To        string `yaml:"to"`
	Index     *int   `yaml:"index,omitempty"`
	MediaType string `yaml:"mediaType"`
	Data      string `yaml:"data"`
	Defer     bool   `yaml:"defer,omitempty"`
}

// Action names the step's action.
func (s Step) Action() string {
	switch {
	case s.PickUp != nil:
		return "pickup"
	case s.Drop != nil:
		return "drop"
	case s.End:
		return "end"
	case s.Abandon:
		return "abandon"
	case s.Paste != nil:
		return "paste"
	case s.Import != nil:
		return "import"
	case s.Resolve:
		return "resolve"
	default:
		return ""
	}
}

func (s Step) actionCount() int {
	n := 0
	for _, set := range []bool{s.PickUp != nil, s.Drop != nil, s.End, s.Abandon, s.Paste != nil, s.Import != nil, s.Resolve} {
		if set {
			n++
		}
	}
	return n
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var sc Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func Load(fsys fs.FS, name string) (*Script, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func LoadFile(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func (sc *Script) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("script %q: no steps", sc.Name)
	}
	for i, st := range sc.Steps {
		if n := st.actionCount(); n != 1 {
			return fmt.Errorf("script %q: step %d: want exactly one action, got %d", sc.Name, i+1, n)
		}
	}
	for name := range sc.Lists {
		if !knownList(name) {
			return fmt.Errorf("script %q: unknown list %q", sc.Name, name)
		}
	}
	for name := range sc.Expect {
		if !knownList(name) {
			return fmt.Errorf("script %q: unknown list %q in expect", sc.Name, name)
		}
	}
	return nil
}

func knownList(name string) bool {
	return catalog.ID(name) == catalog.InProgress || catalog.ID(name) == catalog.Completed
}

// Catalog builds the starting catalog: the script's own lists when it names
// any, otherwise seed as the in-progress list.
func (sc *Script) Catalog(seed []model.Geocache) *catalog.Catalog {
	if len(sc.Lists) == 0 {
		return catalog.NewStandard(seed)
	}
	cat := catalog.NewStandard(namedItems(sc.Lists[string(catalog.InProgress)]))
	done, _ := cat.Collection(catalog.Completed)
	for _, it := range namedItems(sc.Lists[string(catalog.Completed)]) {
		_ = done.Insert(it, done.Len())
	}
	return cat
}

func namedItems(names []string) []model.Geocache {
	out := make([]model.Geocache, 0, len(names))
	for _, n := range names {
		out = append(out, model.Geocache{Name: n, Summary: model.UnknownSummary})
	}
	return out
}
