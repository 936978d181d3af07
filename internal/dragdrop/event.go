package dragdrop

import (
	"context"

	"cachemaker/internal/catalog"
	"cachemaker/internal/importer"
	"cachemaker/internal/model"
)

// Payload is what a drop carries: InternalItem, ExternalText or
// ExternalSource.
type Payload interface {
	isPayload()
}

// InternalItem is a geocache dragged from one of the catalog's collections.
type InternalItem struct {
	Item model.Geocache
}

// ExternalText is plain text dropped from outside the catalog.
type ExternalText struct {
	Text string
}

// ExternalSource is external data that must be loaded before it can be
// inserted.
type ExternalSource struct {
	Provider importer.Provider
}

func (InternalItem) isPayload()   {}
func (ExternalText) isPayload()   {}
func (ExternalSource) isPayload() {}

// DropEvent describes one drop. SourceCollection is empty and SourceIndex is
// nil when the drop has no local provenance. A nil DestinationIndex means the
// drop landed below the last row.
type DropEvent struct {
	SourceCollection catalog.ID
	SourceIndex      *int
	Destination      catalog.ID
	DestinationIndex *int
	Payload          Payload
}

// Row returns a pointer to i for DropEvent index fields.
func Row(i int) *int { return &i }

// InternalDrop builds the event for dropping the session's item on dest. The
// source position is only known to the destination when both are the same
// collection.
func InternalDrop(s Session, dest catalog.ID, destIndex *int) DropEvent {
	ev := DropEvent{
		SourceCollection: s.source,
		Destination:      dest,
		DestinationIndex: destIndex,
		Payload:          InternalItem{Item: s.item},
	}
	if s.source == dest {
		ev.SourceIndex = Row(s.sourceIndex)
	}
	return ev
}

// ExternalDrop builds the event for data arriving from outside the catalog.
func ExternalDrop(dest catalog.ID, destIndex *int, p Payload) DropEvent {
	return DropEvent{Destination: dest, DestinationIndex: destIndex, Payload: p}
}

// Result reports what a drop did.
type Result struct {
	Kind        Kind
	Destination catalog.ID
	Index       int
	Item        model.Geocache

	// Pending is set for ExternalSource drops; nothing has been inserted yet.
	Pending *PendingImport
}

// PendingImport is an external drop whose payload has not been loaded. The
// destination index is captured at drop time.
type PendingImport struct {
	Destination catalog.ID
	Index       int
	Provider    importer.Provider
}

// ResolvedImport is a PendingImport whose payload decoded to a geocache.
type ResolvedImport struct {
	Destination catalog.ID
	Index       int
	Item        model.Geocache
}

// Resolve loads the payload. It may block and is meant to run off the event
// loop; the insert happens later through Engine.ApplyImport.
func (p PendingImport) Resolve(ctx context.Context) (ResolvedImport, error) {
	item, err := importer.Resolve(ctx, p.Provider)
	if err != nil {
		return ResolvedImport{}, err
	}
	return ResolvedImport{Destination: p.Destination, Index: p.Index, Item: item}, nil
}

// Classify decides how a drop is interpreted. Rules are checked in order:
// reorder, cross-list move, external import; anything else is rejected.
// Internal drops need the session that picked the item up; external drops
// need there to be none.
func Classify(s Session, ev DropEvent) Kind {
	provenance := ev.SourceCollection != "" || ev.SourceIndex != nil

	if ev.SourceCollection != "" && ev.SourceCollection == ev.Destination && ev.SourceIndex != nil {
		if !s.Dragging() || ev.SourceCollection != s.source {
			return KindRejected
		}
		return KindReorder
	}

	switch p := ev.Payload.(type) {
	case InternalItem:
		if ev.SourceCollection == "" || ev.SourceCollection == ev.Destination || !s.Dragging() || ev.SourceCollection != s.source {
			return KindRejected
		}
		return KindCrossList
	case ExternalText:
		if provenance || s.Active() {
			return KindRejected
		}
		return KindImport
	case ExternalSource:
		if provenance || s.Active() || p.Provider == nil {
			return KindRejected
		}
		return KindImport
	default:
		return KindRejected
	}
}
