package link

import (
	"math"
	"strings"

	"github.com/dshills/sceneforge/internal/expr"
	"github.com/dshills/sceneforge/internal/tracker"
)

// placeholder stands in for every reference during syntax validation.
const placeholder = "1"

// ConnectTrackers validates and activates a link expression of the form
// "[target] = <expr>;". On any rejection the registry is unchanged and the
// returned error is a *LinkError whose Kind is one of ErrSyntax,
// ErrAlreadyActive, ErrReference, ErrCycle, ErrEvalSyntax or ErrAttach.
//
// A link whose target is already driven by another link replaces it.
func (r *Registry) ConnectTrackers(expression string) error {
	err := r.connect(expression)
	if err != nil {
		r.logger.Debug("rejected link %q: %v", expression, err)
	}
	return err
}

func (r *Registry) connect(expression string) error {
	text := strings.TrimSpace(expression)
	if !strings.HasSuffix(text, ";") {
		return linkErr(ErrSyntax, text, "expression must end with ';'")
	}
	body := strings.TrimSuffix(text, ";")

	if _, active := r.links[text]; active {
		return linkErr(ErrAlreadyActive, text, "%q", text)
	}

	targetRef, rhs, err := splitAssignment(body)
	if err != nil {
		return linkErr(ErrSyntax, text, "%v", err)
	}
	target, ok := r.Resolve(targetRef)
	if !ok {
		return linkErr(ErrReference, text, "target tracker %q not found", targetRef.String())
	}

	segments, err := ScanRefs(rhs)
	if err != nil {
		return linkErr(ErrSyntax, text, "%v", err)
	}
	deps := Refs(segments)
	depTrackers := make([]*tracker.Tracker, len(deps))
	for i, dep := range deps {
		t, ok := r.Resolve(dep)
		if !ok {
			return linkErr(ErrReference, text, "dependency %q missing", dep.String())
		}
		depTrackers[i] = t
	}

	targetKey := targetRef.String()
	if r.createsCycle(targetKey, deps) {
		return linkErr(ErrCycle, text, "%q would depend on itself", targetKey)
	}

	probe := Substitute(segments, func(Reference) string { return placeholder })
	if err := r.engine.Parse(probe); err != nil {
		return linkErr(ErrEvalSyntax, text, "%v", err)
	}

	return r.commit(&Link{
		Expression:   text,
		Target:       targetRef,
		Dependencies: deps,
		segments:     segments,
	}, target, depTrackers)
}

// commit wires a validated link. Attaching updaters is the only step that
// can fail after the graph has been touched; it is rolled back explicitly,
// restoring any link the new one was replacing.
func (r *Registry) commit(l *Link, target *tracker.Tracker, deps []*tracker.Tracker) error {
	targetKey := l.Target.String()

	replaced, hadPrevious := r.targets[targetKey]
	if hadPrevious {
		r.removeExpression(replaced)
	}

	depSet := make(map[string]struct{}, len(l.Dependencies))
	for _, dep := range l.Dependencies {
		depSet[dep.String()] = struct{}{}
	}
	r.graph[targetKey] = depSet

	recompute := r.recomputeFunc(l, target)
	updaterID := UpdaterPrefix + targetKey
	for i, dep := range deps {
		if err := dep.AddUpdater(updaterID, func(float64) { recompute() }, tracker.IdentityTransform); err != nil {
			for _, attached := range deps[:i] {
				attached.RemoveUpdater(updaterID)
			}
			delete(r.graph, targetKey)
			if hadPrevious {
				// The replaced link passed validation before and its
				// references are unchanged, so replaying it succeeds.
				_ = r.connect(replaced)
			}
			return linkErr(ErrAttach, l.Expression, "on %q: %v", dep.ID(), err)
		}
	}

	recompute()
	r.links[l.Expression] = l
	r.linkOrder = append(r.linkOrder, l.Expression)
	r.targets[targetKey] = l.Expression
	r.logger.Debug("connected %q", l.Expression)
	r.emit(Event{Type: LinkAdded, Name: l.Expression})
	return nil
}

// recomputeFunc returns the closure that re-evaluates a link from the
// current values of its dependencies.
func (r *Registry) recomputeFunc(l *Link, target *tracker.Tracker) func() {
	return func() {
		text := Substitute(l.segments, func(ref Reference) string {
			t, ok := r.Resolve(ref)
			if !ok {
				return "nan"
			}
			return "(" + expr.FormatNumber(t.Value()) + ")"
		})
		v, err := expr.Eval(r.engine, text, nil)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		target.SetValue(v)
	}
}

// RemoveExpression deactivates a link. Unknown expressions are ignored.
func (r *Registry) RemoveExpression(expression string) {
	key := strings.TrimSpace(expression)
	r.cascade.Defer(func() { r.removeExpression(key) })
}

func (r *Registry) removeExpression(key string) {
	l, ok := r.links[key]
	if !ok {
		return
	}
	targetKey := l.Target.String()
	updaterID := UpdaterPrefix + targetKey
	for _, dep := range l.Dependencies {
		if t, ok := r.Resolve(dep); ok {
			t.RemoveUpdater(updaterID)
		}
	}
	delete(r.graph, targetKey)
	delete(r.links, key)
	if r.targets[targetKey] == key {
		delete(r.targets, targetKey)
	}
	r.linkOrder = removeString(r.linkOrder, key)
	r.logger.Debug("removed link %q", key)
	r.emit(Event{Type: LinkRemoved, Name: key})
}
