package dragdrop

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cachemaker/internal/catalog"
	"cachemaker/internal/importer"
	"cachemaker/internal/model"

	"github.com/stretchr/testify/require"
)

type memRecorder struct {
	muts []Mutation
	err  error
}

func (r *memRecorder) Record(m Mutation) error {
	r.muts = append(r.muts, m)
	return r.err
}

func gcs(names ...string) []model.Geocache {
	out := make([]model.Geocache, 0, len(names))
	for _, n := range names {
		out = append(out, model.Geocache{Name: n, Summary: n + " summary"})
	}
	return out
}

func newTestEngine(t *testing.T, inProgress, completed []string) (*Engine, *memRecorder) {
	t.Helper()
	cat := catalog.NewStandard(gcs(inProgress...))
	done, _ := cat.Collection(catalog.Completed)
	for i, it := range gcs(completed...) {
		require.NoError(t, done.Insert(it, i))
	}
	rec := &memRecorder{}
	n := 0
	e := NewEngine(cat, WithRecorder(rec), WithSessionIDs(func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}))
	return e, rec
}

func listNames(t *testing.T, e *Engine, id catalog.ID) []string {
	t.Helper()
	col, ok := e.Catalog().Collection(id)
	require.True(t, ok)
	out := []string{}
	for _, it := range col.Items() {
		out = append(out, it.Name)
	}
	return out
}

func TestPickUpCapturesSource(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A", "B"}, nil)
	s, err := e.PickUp(catalog.InProgress, 1)
	require.NoError(t, err)
	require.Equal(t, StateDragging, s.State())
	require.Equal(t, catalog.InProgress, s.Source())
	require.Equal(t, 1, s.SourceIndex())
	require.Equal(t, "B", s.Item().Name)
	require.Equal(t, "s1", s.ID())
	require.False(t, s.DropCompleted())
	require.False(t, s.IsReorder())
}

func TestPickUpOutOfRange(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A"}, nil)
	s, err := e.PickUp(catalog.InProgress, 3)
	require.ErrorIs(t, err, catalog.ErrIndexOutOfRange)
	require.False(t, s.Active())

	_, err = e.PickUp(catalog.ID("archive"), 0)
	require.IsType(t, catalog.UnknownCollectionError{}, err)
}

func TestReorderWithinList(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B", "C", "D"}, nil)
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	s, res, err := e.Drop(s, InternalDrop(s, catalog.InProgress, Row(2)))
	require.NoError(t, err)
	require.Equal(t, KindReorder, res.Kind)
	require.Equal(t, 2, res.Index)
	require.True(t, s.DropCompleted())
	require.True(t, s.IsReorder())
	require.Equal(t, []string{"B", "C", "A", "D"}, listNames(t, e, catalog.InProgress))

	s, err = e.End(s)
	require.NoError(t, err)
	require.False(t, s.Active())
	require.Equal(t, []string{"B", "C", "A", "D"}, listNames(t, e, catalog.InProgress))

	require.Equal(t, []Mutation{{SessionID: "s1", Kind: KindReorder, Op: OpMoveTo, Collection: catalog.InProgress, Index: 0, To: 2, Name: "A"}}, rec.muts)
}

func TestReorderPastLastRowMovesToEnd(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A", "B", "C"}, nil)
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	s, res, err := e.Drop(s, InternalDrop(s, catalog.InProgress, nil))
	require.NoError(t, err)
	require.Equal(t, KindReorder, res.Kind)
	require.Equal(t, 2, res.Index)
	require.Equal(t, []string{"B", "C", "A"}, listNames(t, e, catalog.InProgress))
	_, err = e.End(s)
	require.NoError(t, err)
}

func TestReorderOutOfRangeLeavesSessionDragging(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B"}, nil)
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	next, _, err := e.Drop(s, InternalDrop(s, catalog.InProgress, Row(5)))
	require.ErrorIs(t, err, catalog.ErrIndexOutOfRange)
	require.True(t, next.Dragging())
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
	require.Empty(t, rec.muts)
}

func TestCrossListMoveCompletes(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B"}, []string{"C"})
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	s, res, err := e.Drop(s, InternalDrop(s, catalog.Completed, nil))
	require.NoError(t, err)
	require.Equal(t, KindCrossList, res.Kind)
	require.Equal(t, 1, res.Index)
	require.True(t, s.DropCompleted())
	require.False(t, s.IsReorder())

	// The source keeps its item until session-end.
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
	require.Equal(t, []string{"C", "A"}, listNames(t, e, catalog.Completed))

	s, err = e.End(s)
	require.NoError(t, err)
	require.False(t, s.Active())
	require.Equal(t, []string{"B"}, listNames(t, e, catalog.InProgress))
	require.Equal(t, []string{"C", "A"}, listNames(t, e, catalog.Completed))

	require.Equal(t, []Mutation{
		{SessionID: "s1", Kind: KindCrossList, Op: OpInsert, Collection: catalog.Completed, Index: 1, Name: "A"},
		{SessionID: "s1", Kind: KindCrossList, Op: OpRemove, Collection: catalog.InProgress, Index: 0, Name: "A"},
	}, rec.muts)
}

func TestCrossListMoveAtRow(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A", "B"}, []string{"C", "D"})
	s, err := e.PickUp(catalog.InProgress, 1)
	require.NoError(t, err)

	s, _, err = e.Drop(s, InternalDrop(s, catalog.Completed, Row(1)))
	require.NoError(t, err)
	_, err = e.End(s)
	require.NoError(t, err)

	require.Equal(t, []string{"A"}, listNames(t, e, catalog.InProgress))
	require.Equal(t, []string{"C", "B", "D"}, listNames(t, e, catalog.Completed))
}

func TestCrossListAbandonedAfterDropDoesNotRollBack(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B"}, []string{"C"})
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	s, _, err = e.Drop(s, InternalDrop(s, catalog.Completed, nil))
	require.NoError(t, err)

	s = e.Abandon(s)
	require.False(t, s.Active())
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
	require.Equal(t, []string{"C", "A"}, listNames(t, e, catalog.Completed))
	require.Len(t, rec.muts, 1)

	// Ending the discarded session is a no-op.
	_, err = e.End(s)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
}

func TestGestureAbandonedBeforeDropChangesNothing(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B"}, []string{"C"})
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	s, err = e.End(s)
	require.NoError(t, err)
	require.False(t, s.Active())
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
	require.Equal(t, []string{"C"}, listNames(t, e, catalog.Completed))
	require.Empty(t, rec.muts)
}

func TestSecondDropOnCompletedSessionFails(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B"}, []string{"C"})
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)
	s, _, err = e.Drop(s, InternalDrop(s, catalog.Completed, nil))
	require.NoError(t, err)

	again, res, err := e.Drop(s, InternalDrop(s, catalog.Completed, Row(0)))
	require.ErrorIs(t, err, ErrSessionCompleted)
	require.Equal(t, KindRejected, res.Kind)
	require.Equal(t, s, again)
	require.Equal(t, []string{"C", "A"}, listNames(t, e, catalog.Completed))
	require.Len(t, rec.muts, 1)
}

func TestEndAfterReorderNeverRemoves(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B", "C"}, nil)
	s, err := e.PickUp(catalog.InProgress, 2)
	require.NoError(t, err)
	s, _, err = e.Drop(s, InternalDrop(s, catalog.InProgress, Row(0)))
	require.NoError(t, err)
	require.True(t, s.IsReorder())

	_, err = e.End(s)
	require.NoError(t, err)
	require.Equal(t, []string{"C", "A", "B"}, listNames(t, e, catalog.InProgress))
	require.Len(t, rec.muts, 1)
}

func TestExternalTextImport(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, nil, nil)
	s, res, err := e.Drop(Session{}, ExternalDrop(catalog.Completed, Row(0), ExternalText{Text: "Golden Gate Bridge"}))
	require.NoError(t, err)
	require.False(t, s.Active())
	require.Equal(t, KindImport, res.Kind)

	done, _ := e.Catalog().Collection(catalog.Completed)
	require.Equal(t, []model.Geocache{{Name: "Golden Gate Bridge", Summary: "Unknown", Latitude: 0.0, Longitude: 0.0}}, done.Items())
	require.Equal(t, []Mutation{{Kind: KindImport, Op: OpInsert, Collection: catalog.Completed, Index: 0, Name: "Golden Gate Bridge"}}, rec.muts)
}

func TestExternalTextImportEmptyName(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A"}, nil)
	_, res, err := e.Drop(Session{}, ExternalDrop(catalog.InProgress, nil, ExternalText{}))
	require.NoError(t, err)
	require.Equal(t, KindImport, res.Kind)
	require.Equal(t, []string{"A", ""}, listNames(t, e, catalog.InProgress))
}

func TestExternalDropDuringActiveSessionIsRejected(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A"}, nil)
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	next, res, err := e.Drop(s, ExternalDrop(catalog.Completed, nil, ExternalText{Text: "X"}))
	require.NoError(t, err)
	require.Equal(t, KindRejected, res.Kind)
	require.Equal(t, s, next)
	require.Empty(t, listNames(t, e, catalog.Completed))
	require.Empty(t, rec.muts)
}

func TestInternalDropWithoutSessionIsRejected(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A", "B"}, nil)
	ev := DropEvent{
		SourceCollection: catalog.InProgress,
		SourceIndex:      Row(0),
		Destination:      catalog.InProgress,
		DestinationIndex: Row(1),
		Payload:          InternalItem{Item: model.Geocache{Name: "A"}},
	}
	_, res, err := e.Drop(Session{}, ev)
	require.NoError(t, err)
	require.Equal(t, KindRejected, res.Kind)
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
}

func TestDropOnUnknownCollection(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A"}, nil)
	_, _, err := e.Drop(Session{}, ExternalDrop(catalog.ID("archive"), nil, ExternalText{Text: "X"}))
	require.IsType(t, catalog.UnknownCollectionError{}, err)
}

func TestAsyncImportAppliesAfterDelay(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A", "B"}, nil)
	_, res, err := e.Drop(Session{}, ExternalDrop(catalog.InProgress, Row(1), ExternalSource{Provider: importer.Text("Big Ben")}))
	require.NoError(t, err)
	require.Equal(t, KindImport, res.Kind)
	require.NotNil(t, res.Pending)
	require.Equal(t, []string{"A", "B"}, listNames(t, e, catalog.InProgress))
	require.Empty(t, rec.muts)

	resolved, err := res.Pending.Resolve(context.Background())
	require.NoError(t, err)
	got, err := e.ApplyImport(resolved)
	require.NoError(t, err)
	require.Equal(t, 1, got.Index)
	require.Equal(t, []string{"A", "Big Ben", "B"}, listNames(t, e, catalog.InProgress))
	require.Len(t, rec.muts, 1)
}

func TestAsyncImportAppendsWhenDestinationShrank(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A", "B", "C"}, nil)
	_, res, err := e.Drop(Session{}, ExternalDrop(catalog.InProgress, nil, ExternalSource{Provider: importer.Text("Late")}))
	require.NoError(t, err)
	require.Equal(t, 3, res.Pending.Index)

	// A cross-list move finishes before the payload arrives.
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)
	s, _, err = e.Drop(s, InternalDrop(s, catalog.Completed, nil))
	require.NoError(t, err)
	_, err = e.End(s)
	require.NoError(t, err)

	resolved, err := res.Pending.Resolve(context.Background())
	require.NoError(t, err)
	got, err := e.ApplyImport(resolved)
	require.NoError(t, err)
	require.Equal(t, 2, got.Index)
	require.Equal(t, []string{"B", "C", "Late"}, listNames(t, e, catalog.InProgress))
}

func TestAsyncImportDropOutOfRangeFails(t *testing.T) {
	t.Parallel()

	for _, row := range []int{99, 2, -1} {
		e, rec := newTestEngine(t, []string{"A"}, nil)
		next, res, err := e.Drop(Session{}, ExternalDrop(catalog.InProgress, Row(row), ExternalSource{Provider: importer.Text("Late")}))
		require.ErrorIs(t, err, catalog.ErrIndexOutOfRange, "row %d", row)
		var oor catalog.IndexOutOfRangeError
		require.ErrorAs(t, err, &oor)
		require.Equal(t, row, oor.Index)
		require.Equal(t, 1, oor.Len)
		require.Nil(t, res.Pending)
		require.False(t, next.Active())
		require.Equal(t, []string{"A"}, listNames(t, e, catalog.InProgress))
		require.Empty(t, rec.muts)
	}
}

func TestAsyncImportDropAtEndIsAccepted(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A"}, nil)
	_, res, err := e.Drop(Session{}, ExternalDrop(catalog.InProgress, Row(1), ExternalSource{Provider: importer.Text("Late")}))
	require.NoError(t, err)
	require.NotNil(t, res.Pending)
	require.Equal(t, 1, res.Pending.Index)
}

func TestExternalDropAfterCompletedDropIsRejected(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A"}, nil)
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)
	s, _, err = e.Drop(s, InternalDrop(s, catalog.Completed, nil))
	require.NoError(t, err)
	require.True(t, s.DropCompleted())

	for _, p := range []Payload{ExternalText{Text: "X"}, ExternalSource{Provider: importer.Text("X")}} {
		next, res, err := e.Drop(s, ExternalDrop(catalog.Completed, nil, p))
		require.NoError(t, err)
		require.Equal(t, KindRejected, res.Kind)
		require.Nil(t, res.Pending)
		require.Equal(t, s, next)
	}
	require.Equal(t, []string{"A"}, listNames(t, e, catalog.Completed))
	require.Len(t, rec.muts, 1)
}

func TestAsyncImportInvalidPayloadIsANoOp(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, []string{"A"}, nil)
	bad := importer.ProviderFunc(func(context.Context) (importer.Representation, error) {
		return importer.Representation{MediaType: "image/png", Data: []byte{0x89}}, nil
	})
	_, res, err := e.Drop(Session{}, ExternalDrop(catalog.InProgress, nil, ExternalSource{Provider: bad}))
	require.NoError(t, err)

	_, err = res.Pending.Resolve(context.Background())
	require.ErrorIs(t, err, importer.ErrInvalidPayload)
	require.Equal(t, []string{"A"}, listNames(t, e, catalog.InProgress))
	require.Empty(t, rec.muts)
}

func TestRecorderFailureDoesNotFailDrop(t *testing.T) {
	t.Parallel()

	e, rec := newTestEngine(t, nil, nil)
	rec.err = errors.New("journal closed")
	_, res, err := e.Drop(Session{}, ExternalDrop(catalog.Completed, nil, ExternalText{Text: "X"}))
	require.NoError(t, err)
	require.Equal(t, KindImport, res.Kind)
	require.Equal(t, []string{"X"}, listNames(t, e, catalog.Completed))
}

func TestPropose(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A"}, nil)
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	require.Equal(t, OpCopy, Propose(Session{}, 1))
	require.Equal(t, OpMove, Propose(s, 1))
	require.Equal(t, OpCancel, Propose(s, 2))
	require.Equal(t, "move", OpMove.String())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	e, _ := newTestEngine(t, []string{"A", "B"}, []string{"C"})
	s, err := e.PickUp(catalog.InProgress, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		s    Session
		ev   DropEvent
		want Kind
	}{
		{name: "same list with index", s: s, ev: InternalDrop(s, catalog.InProgress, nil), want: KindReorder},
		{name: "other list", s: s, ev: InternalDrop(s, catalog.Completed, nil), want: KindCrossList},
		{
			name: "same list without index",
			s:    s,
			ev:   DropEvent{SourceCollection: catalog.InProgress, Destination: catalog.InProgress, Payload: InternalItem{}},
			want: KindRejected,
		},
		{
			name: "source differs from session",
			s:    s,
			ev:   DropEvent{SourceCollection: catalog.Completed, Destination: catalog.InProgress, Payload: InternalItem{}},
			want: KindRejected,
		},
		{name: "external text", s: Session{}, ev: ExternalDrop(catalog.Completed, nil, ExternalText{Text: "x"}), want: KindImport},
		{name: "external source without provider", s: Session{}, ev: ExternalDrop(catalog.Completed, nil, ExternalSource{}), want: KindRejected},
		{name: "no payload", s: Session{}, ev: ExternalDrop(catalog.Completed, nil, nil), want: KindRejected},
		{
			name: "external text with provenance",
			s:    Session{},
			ev:   DropEvent{SourceCollection: catalog.InProgress, Destination: catalog.Completed, Payload: ExternalText{Text: "x"}},
			want: KindRejected,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Classify(tt.s, tt.ev))
		})
	}
}
