package ledger

import (
	"errors"
	"fmt"
)

// HandleRecord is the serializable form of a Handle.
type HandleRecord struct {
	ID       string         `json:"id" yaml:"id"`
	TargetID string         `json:"targetId" yaml:"targetId"`
	Type     string         `json:"type" yaml:"type"`
	Category string         `json:"category,omitempty" yaml:"category,omitempty"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Record returns the serializable form of h.
func (h *Handle) Record() HandleRecord {
	return HandleRecord{
		ID:       h.ID,
		TargetID: h.TargetID,
		Type:     h.Type,
		Category: h.Category,
		Label:    h.Label,
		Params:   copyParams(h.Params),
	}
}

// Factory builds the playable for a record.
type Factory interface {
	Build(rec HandleRecord) (Playable, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(rec HandleRecord) (Playable, error)

// Build calls f(rec).
func (f FactoryFunc) Build(rec HandleRecord) (Playable, error) {
	return f(rec)
}

// Records returns the groups as ordered lists of handle records.
func (l *Ledger) Records() [][]HandleRecord {
	out := make([][]HandleRecord, len(l.order))
	for g, group := range l.order {
		recs := make([]HandleRecord, len(group))
		for i, id := range group {
			recs[i] = l.lookup[id].Record()
		}
		out[g] = recs
	}
	return out
}

// Labels returns the group labels in order.
func (l *Ledger) Labels() []string {
	out := make([]string, len(l.meta))
	for i, m := range l.meta {
		out[i] = m.Label
	}
	return out
}

// LoadRecords replaces the ledger contents with groups rebuilt from records.
// A record the factory cannot build is skipped and its error collected;
// the rest of the ledger still loads. labels, if given, are applied to the
// groups in order.
func (l *Ledger) LoadRecords(records [][]HandleRecord, f Factory, labels ...string) error {
	if f == nil {
		return ErrNilFactory
	}
	l.Clear()

	var errs []error
	for g, group := range records {
		handles := make([]*Handle, 0, len(group))
		for _, rec := range group {
			p, err := f.Build(rec)
			if err == nil && p == nil {
				err = ErrNilPlayable
			}
			if err != nil {
				errs = append(errs, fmt.Errorf("group %d animation %q: %w", g, rec.ID, err))
				continue
			}
			handles = append(handles, &Handle{
				ID:       rec.ID,
				TargetID: rec.TargetID,
				Type:     rec.Type,
				Category: rec.Category,
				Label:    rec.Label,
				Params:   copyParams(rec.Params),
				Playable: p,
			})
		}
		label := ""
		if g < len(labels) {
			label = labels[g]
		}
		l.AddLabeledAnimations(label, handles...)
	}
	if len(errs) > 0 {
		l.logger.Warn("loaded ledger with %d errors", len(errs))
	}
	return errors.Join(errs...)
}

func copyParams(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
