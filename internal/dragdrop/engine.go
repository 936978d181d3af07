// Package dragdrop reconciles drag gestures with the catalog's collections.
//
// A gesture is a sequence of calls on one Engine: PickUp creates a session,
// Drop classifies and applies the drop, and End runs after the gesture's
// terminal notification. Each call takes the current Session and returns the
// next one; the engine keeps no session state of its own.
//
// A cross-list move inserts into the destination at drop time and removes
// from the source only at End, and only when the drop completed. An
// abandoned gesture therefore never deletes the source item.
package dragdrop

import (
	"errors"
	"fmt"
	"log/slog"

	"cachemaker/internal/catalog"
	"cachemaker/internal/importer"

	"github.com/google/uuid"
)

var ErrSessionCompleted = errors.New("drag session already dropped")

// MutationOp names a structural change to a collection.
type MutationOp string

const (
	OpInsert MutationOp = "insert"
	OpRemove MutationOp = "remove"
	OpMoveTo MutationOp = "move"
)

// Mutation is one applied collection change.
type Mutation struct {
	SessionID  string
	Kind       Kind
	Op         MutationOp
	Collection catalog.ID
	Index      int
	To         int // OpMoveTo only
	Name       string
}

// Recorder receives every applied mutation, in order.
type Recorder interface {
	Record(m Mutation) error
}

type Engine struct {
	cat      *catalog.Catalog
	logger   *slog.Logger
	recorder Recorder
	newID    func() string
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithSessionIDs replaces the UUID generator used for session ids.
func WithSessionIDs(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newID = next
		}
	}
}

func NewEngine(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		cat:    cat,
		logger: slog.New(slog.DiscardHandler),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// PickUp starts a session for the item at index in source.
func (e *Engine) PickUp(source catalog.ID, index int) (Session, error) {
	col, err := e.cat.Lookup(source)
	if err != nil {
		return Session{}, err
	}
	item, err := col.ItemAt(index)
	if err != nil {
		e.logger.Error("pick up", "collection", source, "index", index, "err", err)
		return Session{}, err
	}
	s := Session{
		id:          e.newID(),
		state:       StateDragging,
		source:      source,
		sourceIndex: index,
		item:        item,
	}
	e.logger.Debug("drag started", "session", s.id, "collection", source, "index", index, "name", item.Name)
	return s, nil
}

// Drop interprets ev against s and applies the resulting mutation. A
// rejected drop returns s unchanged, a zero-kind Result and a nil error.
func (e *Engine) Drop(s Session, ev DropEvent) (Session, Result, error) {
	if _, internal := ev.Payload.(InternalItem); internal && s.DropCompleted() {
		return s, Result{}, ErrSessionCompleted
	}
	dest, err := e.cat.Lookup(ev.Destination)
	if err != nil {
		return s, Result{}, err
	}

	kind := Classify(s, ev)
	log := e.logger.With("session", s.id, "kind", kind.String(), "destination", ev.Destination)

	switch kind {
	case KindReorder:
		from := *ev.SourceIndex
		to := resolveMoveIndex(dest, ev.DestinationIndex)
		if err := dest.MoveTo(from, to); err != nil {
			log.Error("reorder", "from", from, "to", to, "err", err)
			return s, Result{}, err
		}
		e.record(Mutation{SessionID: s.id, Kind: kind, Op: OpMoveTo, Collection: dest.ID(), Index: from, To: to, Name: s.item.Name})
		log.Info("reordered", "from", from, "to", to)
		return s.dropped(KindReorder), Result{Kind: kind, Destination: dest.ID(), Index: to, Item: s.item}, nil

	case KindCrossList:
		item := ev.Payload.(InternalItem).Item
		at := resolveInsertIndex(dest, ev.DestinationIndex)
		if err := dest.Insert(item, at); err != nil {
			log.Error("cross-list insert", "index", at, "err", err)
			return s, Result{}, err
		}
		e.record(Mutation{SessionID: s.id, Kind: kind, Op: OpInsert, Collection: dest.ID(), Index: at, Name: item.Name})
		log.Info("moved across lists; source removal deferred", "source", s.source, "sourceIndex", s.sourceIndex, "index", at)
		return s.dropped(KindCrossList), Result{Kind: kind, Destination: dest.ID(), Index: at, Item: item}, nil

	case KindImport:
		at := resolveInsertIndex(dest, ev.DestinationIndex)
		switch p := ev.Payload.(type) {
		case ExternalSource:
			if at < 0 || at > dest.Len() {
				err := catalog.IndexOutOfRangeError{Op: "insert", Index: at, Len: dest.Len()}
				log.Error("import drop", "index", at, "err", err)
				return s, Result{}, err
			}
			log.Debug("import pending", "index", at)
			return s, Result{Kind: kind, Destination: dest.ID(), Index: at, Pending: &PendingImport{
				Destination: dest.ID(),
				Index:       at,
				Provider:    p.Provider,
			}}, nil
		case ExternalText:
			item := importer.FromText(p.Text)
			if err := dest.Insert(item, at); err != nil {
				log.Error("import insert", "index", at, "err", err)
				return s, Result{}, err
			}
			e.record(Mutation{Kind: kind, Op: OpInsert, Collection: dest.ID(), Index: at, Name: item.Name})
			log.Info("imported", "index", at, "name", item.Name)
			return s, Result{Kind: kind, Destination: dest.ID(), Index: at, Item: item}, nil
		}
	}

	log.Debug("drop rejected", "source", ev.SourceCollection, "payload", fmt.Sprintf("%T", ev.Payload))
	return s, Result{Kind: KindRejected, Destination: dest.ID()}, nil
}

// End finishes a gesture. A completed cross-list move removes the item from
// its source; a reorder or an abandoned gesture changes nothing. The returned
// session is always Idle.
func (e *Engine) End(s Session) (Session, error) {
	switch {
	case !s.Active():
		return Session{}, nil
	case !s.DropCompleted():
		e.logger.Debug("drag abandoned", "session", s.id)
		return Session{}, nil
	case s.IsReorder():
		e.logger.Debug("drag ended", "session", s.id, "kind", KindReorder.String())
		return Session{}, nil
	}

	src, err := e.cat.Lookup(s.source)
	if err != nil {
		return Session{}, err
	}
	removed, err := src.RemoveAt(s.sourceIndex)
	if err != nil {
		e.logger.Error("finalize cross-list move", "session", s.id, "source", s.source, "index", s.sourceIndex, "err", err)
		return Session{}, err
	}
	e.record(Mutation{SessionID: s.id, Kind: s.kind, Op: OpRemove, Collection: s.source, Index: s.sourceIndex, Name: removed.Name})
	e.logger.Info("cross-list move finalized", "session", s.id, "source", s.source, "index", s.sourceIndex)
	return Session{}, nil
}

// Abandon discards s without finalizing it. A destination insert already made
// by a cross-list drop stays in place, so the item is visible in both lists.
func (e *Engine) Abandon(s Session) Session {
	if kind, ok := s.DropKind(); ok && kind == KindCrossList {
		e.logger.Warn("cross-list drop abandoned; destination keeps its copy", "session", s.id, "source", s.source, "sourceIndex", s.sourceIndex)
	} else if s.Active() {
		e.logger.Debug("drag cancelled", "session", s.id)
	}
	return Session{}
}

// ApplyImport inserts a resolved external import. The index was checked at
// drop time; if the destination shrank since then, it is clamped to an
// append.
func (e *Engine) ApplyImport(r ResolvedImport) (Result, error) {
	dest, err := e.cat.Lookup(r.Destination)
	if err != nil {
		return Result{}, err
	}
	at := r.Index
	if at > dest.Len() {
		e.logger.Warn("import index past end; appending", "destination", r.Destination, "index", at, "len", dest.Len())
		at = dest.Len()
	}
	if err := dest.Insert(r.Item, at); err != nil {
		e.logger.Error("import insert", "destination", r.Destination, "index", at, "err", err)
		return Result{}, err
	}
	e.record(Mutation{Kind: KindImport, Op: OpInsert, Collection: dest.ID(), Index: at, Name: r.Item.Name})
	e.logger.Info("imported", "destination", r.Destination, "index", at, "name", r.Item.Name)
	return Result{Kind: KindImport, Destination: dest.ID(), Index: at, Item: r.Item}, nil
}

func (e *Engine) record(m Mutation) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(m); err != nil {
		e.logger.Warn("journal record", "op", m.Op, "collection", m.Collection, "err", err)
	}
}

// resolveInsertIndex maps "no row" to an append.
func resolveInsertIndex(dest *catalog.Collection, idx *int) int {
	if idx == nil {
		return dest.Len()
	}
	return *idx
}

// resolveMoveIndex maps "no row" to the last slot; Len() itself is not a
// valid MoveTo target.
func resolveMoveIndex(dest *catalog.Collection, idx *int) int {
	if idx == nil {
		return dest.Len() - 1
	}
	return *idx
}
