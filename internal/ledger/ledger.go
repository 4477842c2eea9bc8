package ledger

import (
	"github.com/google/uuid"

	"github.com/dshills/sceneforge/internal/logging"
)

// Handle is one animation registered with the ledger.
type Handle struct {
	ID       string
	TargetID string
	Type     string
	Category string
	Label    string
	Params   map[string]any
	Playable Playable
}

// GroupMeta is metadata attached to a group.
type GroupMeta struct {
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Group is a copy of one group's handle ids and metadata.
type Group struct {
	IDs  []string
	Meta GroupMeta
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the ledger logger.
func WithLogger(l *logging.Logger) Option {
	return func(led *Ledger) {
		led.logger = logging.OrNull(l).WithComponent("ledger")
	}
}

// Ledger is an ordered list of animation groups with a circular cursor.
// It is not safe for concurrent use.
type Ledger struct {
	logger *logging.Logger

	lookup map[string]*Handle
	order  [][]string
	meta   []GroupMeta
	active int
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		logger: logging.NullLogger,
		lookup: make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddAnimations registers the handles and appends them as one new group.
// Handles without an id get a generated one. Nil handles, handles without a
// playable and ids already in the ledger are skipped. The ids of the new
// group are returned; the active index is not changed.
func (l *Ledger) AddAnimations(handles ...*Handle) []string {
	return l.AddLabeledAnimations("", handles...)
}

// AddLabeledAnimations is AddAnimations with a group label.
func (l *Ledger) AddLabeledAnimations(label string, handles ...*Handle) []string {
	ids := make([]string, 0, len(handles))
	seen := make(map[string]bool, len(handles))
	for _, h := range handles {
		if h == nil || h.Playable == nil {
			l.logger.Warn("skipping animation without playable")
			continue
		}
		if h.ID == "" {
			h.ID = uuid.NewString()
		}
		if _, exists := l.lookup[h.ID]; exists || seen[h.ID] {
			l.logger.Warn("animation %q already registered", h.ID)
			continue
		}
		seen[h.ID] = true
		ids = append(ids, h.ID)
	}
	if len(ids) == 0 {
		return ids
	}

	for _, h := range handles {
		if h != nil && seen[h.ID] {
			l.lookup[h.ID] = h
		}
	}
	l.order = append(l.order, ids)
	l.meta = append(l.meta, GroupMeta{Label: label})
	l.logger.Debug("added group %d with %d animations", len(l.order)-1, len(ids))
	return append([]string(nil), ids...)
}

// Animate plays the group at the active index and advances the index,
// wrapping to the first group after the last.
func (l *Ledger) Animate() {
	n := len(l.order)
	if n == 0 {
		return
	}
	for _, id := range l.order[l.active] {
		l.lookup[id].Playable.Play()
	}
	l.active = (l.active + 1) % n
}

// ReverseAnimate reverses the group at the active index and moves the index
// back one, wrapping to the last group. At index 0 every animation is first
// finished, so stepping back from the start behaves like completing a cycle.
func (l *Ledger) ReverseAnimate() {
	n := len(l.order)
	if n == 0 {
		return
	}
	group := l.order[l.active]
	if l.active == 0 {
		l.FinishAll()
	}
	for _, id := range group {
		l.lookup[id].Playable.Reverse()
	}
	l.active = (l.active - 1 + n) % n
}

// ResetAll returns every animation to its pre-play state, walking groups and
// handles from last to first, and rewinds the active index to 0.
func (l *Ledger) ResetAll() {
	l.eachReversed(func(p Playable) {
		p.Pause()
		p.SeekToEnd()
		p.Reset()
	})
	l.active = 0
}

// FinishAll jumps every animation to its finished state, walking groups and
// handles from last to first. The active index is unchanged.
func (l *Ledger) FinishAll() {
	l.eachReversed(Playable.Complete)
}

func (l *Ledger) eachReversed(fn func(Playable)) {
	for g := len(l.order) - 1; g >= 0; g-- {
		group := l.order[g]
		for i := len(group) - 1; i >= 0; i-- {
			fn(l.lookup[group[i]].Playable)
		}
	}
}

// RemoveAnimation reverts and removes one animation. Groups left empty are
// dropped. Unknown ids are logged and ignored.
func (l *Ledger) RemoveAnimation(id string) {
	h, ok := l.lookup[id]
	if !ok {
		l.logger.Warn("remove: unknown animation %q", id)
		return
	}
	if r, ok := h.Playable.(Reverter); ok {
		r.Revert()
	} else {
		h.Playable.Pause()
	}
	delete(l.lookup, id)

	order := l.order[:0]
	meta := l.meta[:0]
	for g, group := range l.order {
		kept := group[:0]
		for _, gid := range group {
			if gid != id {
				kept = append(kept, gid)
			}
		}
		if len(kept) == 0 {
			continue
		}
		order = append(order, kept)
		meta = append(meta, l.meta[g])
	}
	l.order = order
	l.meta = meta

	if l.active >= len(l.order) {
		l.active = 0
	}
}

// MoveGroup swaps group i with its neighbour in direction d. Out-of-range
// moves are ignored. An active index on either group follows it.
func (l *Ledger) MoveGroup(i int, d Direction) {
	var j int
	switch d {
	case Up:
		j = i - 1
	case Down:
		j = i + 1
	default:
		return
	}
	n := len(l.order)
	if i < 0 || i >= n || j < 0 || j >= n {
		return
	}
	l.order[i], l.order[j] = l.order[j], l.order[i]
	l.meta[i], l.meta[j] = l.meta[j], l.meta[i]

	switch l.active {
	case i:
		l.active = j
	case j:
		l.active = i
	}
}

// SetGroupLabel replaces the label of group i.
func (l *Ledger) SetGroupLabel(i int, label string) {
	if i < 0 || i >= len(l.meta) {
		return
	}
	l.meta[i].Label = label
}

// Clear removes every group and handle without touching the playables.
func (l *Ledger) Clear() {
	l.lookup = make(map[string]*Handle)
	l.order = nil
	l.meta = nil
	l.active = 0
}

// ActiveIndex returns the index of the group Animate will play next.
func (l *Ledger) ActiveIndex() int {
	return l.active
}

// Len returns the number of groups.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Handle returns the animation registered under id.
func (l *Ledger) Handle(id string) (*Handle, bool) {
	h, ok := l.lookup[id]
	return h, ok
}

// Order returns a copy of the group order.
func (l *Ledger) Order() [][]string {
	out := make([][]string, len(l.order))
	for i, group := range l.order {
		out[i] = append([]string(nil), group...)
	}
	return out
}

// GroupsWithMeta returns a copy of the groups with their metadata.
func (l *Ledger) GroupsWithMeta() []Group {
	out := make([]Group, len(l.order))
	for i, group := range l.order {
		out[i] = Group{IDs: append([]string(nil), group...), Meta: l.meta[i]}
	}
	return out
}
