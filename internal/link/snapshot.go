package link

import (
	"errors"
	"fmt"

	"github.com/dshills/sceneforge/internal/tracker"
)

// TrackerRecord is the persisted form of a scalar tracker.
type TrackerRecord struct {
	ID    string  `json:"id" yaml:"id"`
	Value float64 `json:"value" yaml:"value"`
}

// PointRecord is the persisted form of a point tracker.
type PointRecord struct {
	ID    string        `json:"id" yaml:"id"`
	Value tracker.Point `json:"value" yaml:"value"`
}

// Snapshot is the persisted form of a registry.
type Snapshot struct {
	Trackers      []TrackerRecord `json:"trackers" yaml:"trackers"`
	PointTrackers []PointRecord   `json:"pointTrackers" yaml:"pointTrackers"`
	// Links holds the active link texts. A text replaced by a later link
	// on the same target is no longer active and is not persisted.
	Links         []string        `json:"links" yaml:"links"`
}

// Snapshot captures trackers and active links in creation order.
func (r *Registry) Snapshot() Snapshot {
	snap := Snapshot{
		Trackers:      make([]TrackerRecord, 0, len(r.scalarOrder)),
		PointTrackers: make([]PointRecord, 0, len(r.pointOrder)),
		Links:         r.Expressions(),
	}
	for _, name := range r.scalarOrder {
		snap.Trackers = append(snap.Trackers, TrackerRecord{ID: name, Value: r.scalars[name].Value()})
	}
	for _, name := range r.pointOrder {
		snap.PointTrackers = append(snap.PointTrackers, PointRecord{ID: name, Value: r.points[name].Point()})
	}
	return snap
}

// Load replaces the registry contents with snap. Trackers are created
// first, then links are replayed in order through ConnectTrackers. Every
// failure is collected into the returned error; later entries still load.
func (r *Registry) Load(snap Snapshot) error {
	if r.cascade.Active() {
		return ErrCascadeActive
	}
	r.clear()

	var errs []error
	for _, rec := range snap.Trackers {
		if _, err := r.AddValueTracker(rec.ID, rec.Value); err != nil {
			errs = append(errs, fmt.Errorf("tracker %q: %w", rec.ID, err))
		}
	}
	for _, rec := range snap.PointTrackers {
		if _, err := r.AddPointTracker(rec.ID, rec.Value); err != nil {
			errs = append(errs, fmt.Errorf("point tracker %q: %w", rec.ID, err))
		}
	}
	for _, expression := range snap.Links {
		if err := r.ConnectTrackers(expression); err != nil {
			errs = append(errs, fmt.Errorf("link %q: %w", expression, err))
		}
	}
	if len(errs) > 0 {
		r.logger.Warn("loaded snapshot with %d errors", len(errs))
	}
	return errors.Join(errs...)
}
