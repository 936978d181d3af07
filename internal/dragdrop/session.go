package dragdrop

import (
	"cachemaker/internal/catalog"
	"cachemaker/internal/model"
)

// State is the lifecycle position of a drag session.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateDropped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Kind classifies a drop.
type Kind int

const (
	KindRejected Kind = iota
	KindReorder
	KindCrossList
	KindImport
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindReorder:
		return "reorder"
	case KindCrossList:
		return "cross-list"
	case KindImport:
		return "import"
	default:
		return "unknown"
	}
}

// Session is one pick-up-to-release gesture. It is a value: the engine takes
// the current session and returns the next one. The zero Session is Idle.
//
// Source and SourceIndex are captured at pick-up and never recomputed.
type Session struct {
	id          string
	state       State
	source      catalog.ID
	sourceIndex int
	item        model.Geocache
	kind        Kind
}

func (s Session) ID() string                { return s.id }
func (s Session) State() State              { return s.state }
func (s Session) Source() catalog.ID        { return s.source }
func (s Session) SourceIndex() int          { return s.sourceIndex }
func (s Session) Item() model.Geocache      { return s.item }
func (s Session) Active() bool              { return s.state != StateIdle }
func (s Session) Dragging() bool            { return s.state == StateDragging }
func (s Session) DropCompleted() bool       { return s.state == StateDropped }
func (s Session) IsReorder() bool           { return s.state == StateDropped && s.kind == KindReorder }
func (s Session) DropKind() (Kind, bool)    { return s.kind, s.state == StateDropped }
func (s Session) dropped(kind Kind) Session { s.state = StateDropped; s.kind = kind; return s }

// Operation is the drop proposal shown while a drag hovers over a collection.
type Operation int

const (
	OpCancel Operation = iota
	OpMove
	OpCopy
)

func (o Operation) String() string {
	switch o {
	case OpMove:
		return "move"
	case OpCopy:
		return "copy"
	default:
		return "cancel"
	}
}

// Propose picks the drop operation: data from outside the app is copied, a
// local single-item drag is moved, and batch drags are refused.
func Propose(s Session, itemCount int) Operation {
	if !s.Dragging() {
		return OpCopy
	}
	if itemCount != 1 {
		return OpCancel
	}
	return OpMove
}
