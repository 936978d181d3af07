package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"cachemaker/internal/catalog"
	"cachemaker/internal/dragdrop"
	"cachemaker/internal/importer"
)

// StepResult is what one step did.
type StepResult struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
	Kind   string `json:"kind,omitempty"`
	Index  *int   `json:"index,omitempty"`
	Name   string `json:"name,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Name  string              `json:"name"`
	Steps []StepResult        `json:"steps"`
	Lists map[string][]string `json:"lists"`
}

// ExpectationError reports lists that did not end up as the script expected.
type ExpectationError struct {
	List string
	Want []string
	Got  []string
}

func (e ExpectationError) Error() string {
	return fmt.Sprintf("list %s: want %q, got %q", e.List, e.Want, e.Got)
}

// StepError wraps a step failure that the script did not expect.
type StepError struct {
	Step   int
	Action string
	Err    error
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Action, e.Err)
}

func (e StepError) Unwrap() error { return e.Err }

// Runner drives an Engine through a script the way the TUI's event loop
// would: one step at a time, with async imports resolved between steps.
type Runner struct {
	eng     *dragdrop.Engine
	logger  *slog.Logger
	session dragdrop.Session
	held    []dragdrop.PendingImport
}

func NewRunner(eng *dragdrop.Engine, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{eng: eng, logger: logger}
}

// Session returns the gesture state after the last step.
func (r *Runner) Session() dragdrop.Session { return r.session }

// Run executes every step and then checks sc.Expect. The report is filled in
// as far as the run got, even when an error is returned.
func (r *Runner) Run(ctx context.Context, sc *Script) (Report, error) {
	rep := Report{Name: sc.Name}
	for i, st := range sc.Steps {
		res, err := r.step(ctx, st)
		res.Step = i + 1
		res.Action = st.Action()
		if err != nil {
			res.Error = err.Error()
		}
		rep.Steps = append(rep.Steps, res)

		switch {
		case st.Error == "" && err != nil:
			rep.Lists = r.lists()
			return rep, StepError{Step: res.Step, Action: res.Action, Err: err}
		case st.Error != "" && err == nil:
			rep.Lists = r.lists()
			return rep, StepError{Step: res.Step, Action: res.Action, Err: fmt.Errorf("expected error containing %q", st.Error)}
		case st.Error != "" && !strings.Contains(err.Error(), st.Error):
			rep.Lists = r.lists()
			return rep, StepError{Step: res.Step, Action: res.Action, Err: fmt.Errorf("error %q does not contain %q", err, st.Error)}
		}
		r.logger.Debug("script step", "script", sc.Name, "step", res.Step, "action", res.Action, "kind", res.Kind)
	}
	rep.Lists = r.lists()
	return rep, r.check(sc.Expect, rep.Lists)
}

func (r *Runner) step(ctx context.Context, st Step) (StepResult, error) {
	switch {
	case st.PickUp != nil:
		s, err := r.eng.PickUp(catalog.ID(st.PickUp.From), st.PickUp.Index)
		if err != nil {
			return StepResult{}, err
		}
		r.session = s
		return StepResult{Index: dragdrop.Row(s.SourceIndex()), Name: s.Item().Name}, nil

	case st.Drop != nil:
		ev := dragdrop.InternalDrop(r.session, catalog.ID(st.Drop.To), st.Drop.Index)
		return r.drop(ctx, ev, false)

	case st.End:
		s, err := r.eng.End(r.session)
		r.session = s
		return StepResult{}, err

	case st.Abandon:
		r.session = r.eng.Abandon(r.session)
		return StepResult{}, nil

	case st.Paste != nil:
		ev := dragdrop.ExternalDrop(catalog.ID(st.Paste.To), st.Paste.Index, dragdrop.ExternalText{Text: st.Paste.Text})
		return r.drop(ctx, ev, false)

	case st.Import != nil:
		rep := importer.Representation{MediaType: st.Import.MediaType, Data: []byte(st.Import.Data)}
		p := importer.ProviderFunc(func(context.Context) (importer.Representation, error) { return rep, nil })
		ev := dragdrop.ExternalDrop(catalog.ID(st.Import.To), st.Import.Index, dragdrop.ExternalSource{Provider: p})
		return r.drop(ctx, ev, st.Import.Defer)

	case st.Resolve:
		return r.resolveHeld(ctx)
	}
	return StepResult{}, errors.New("step has no action")
}

func (r *Runner) drop(ctx context.Context, ev dragdrop.DropEvent, hold bool) (StepResult, error) {
	s, res, err := r.eng.Drop(r.session, ev)
	if err != nil {
		return StepResult{}, err
	}
	r.session = s
	out := StepResult{Kind: res.Kind.String()}
	if res.Kind == dragdrop.KindRejected {
		return out, nil
	}
	if res.Pending != nil {
		if hold {
			r.held = append(r.held, *res.Pending)
			out.Index = dragdrop.Row(res.Pending.Index)
			return out, nil
		}
		return r.apply(ctx, *res.Pending)
	}
	out.Index = dragdrop.Row(res.Index)
	out.Name = res.Item.Name
	return out, nil
}

func (r *Runner) resolveHeld(ctx context.Context) (StepResult, error) {
	held := r.held
	r.held = nil
	var out StepResult
	for _, p := range held {
		res, err := r.apply(ctx, p)
		if err != nil {
			return res, err
		}
		out = res
	}
	return out, nil
}

// apply resolves a pending import and inserts it. A payload that cannot be
// decoded turns the drop into a no-op, as the TUI does.
func (r *Runner) apply(ctx context.Context, p dragdrop.PendingImport) (StepResult, error) {
	resolved, err := p.Resolve(ctx)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidPayload) {
			r.logger.Warn("import dropped", "destination", p.Destination, "err", err)
			return StepResult{Kind: dragdrop.KindRejected.String(), Error: err.Error()}, nil
		}
		return StepResult{}, err
	}
	res, err := r.eng.ApplyImport(resolved)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{Kind: res.Kind.String(), Index: dragdrop.Row(res.Index), Name: res.Item.Name}, nil
}

func (r *Runner) lists() map[string][]string {
	out := map[string][]string{}
	for id, items := range r.eng.Catalog().Snapshot() {
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.Name)
		}
		out[string(id)] = names
	}
	return out
}

func (r *Runner) check(expect map[string][]string, got map[string][]string) error {
	var errs []error
	for _, id := range r.eng.Catalog().IDs() {
		want, ok := expect[string(id)]
		if !ok {
			continue
		}
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(want, got[string(id)]) {
			errs = append(errs, ExpectationError{List: string(id), Want: want, Got: got[string(id)]})
		}
	}
	return errors.Join(errs...)
}
