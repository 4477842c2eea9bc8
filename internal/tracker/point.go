package tracker

// Point is a 2D value.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Axis names a point component.
type Axis string

// Point axes.
const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// PointTracker is a named pair of independent trackers.
type PointTracker struct {
	id string
	x  *Tracker
	y  *Tracker
}

// NewPoint creates a point tracker whose axes are trackers named
// "<id>.x" and "<id>.y". Options apply to both axes.
func NewPoint(id string, initial Point, opts ...Option) *PointTracker {
	return &PointTracker{
		id: id,
		x:  New(id+"."+string(AxisX), initial.X, opts...),
		y:  New(id+"."+string(AxisY), initial.Y, opts...),
	}
}

// ID returns the point tracker's identifier.
func (p *PointTracker) ID() string {
	return p.id
}

// X returns the x-axis tracker.
func (p *PointTracker) X() *Tracker {
	return p.x
}

// Y returns the y-axis tracker.
func (p *PointTracker) Y() *Tracker {
	return p.y
}

// Axis returns the tracker for the named axis, or nil.
func (p *PointTracker) Axis(a Axis) *Tracker {
	switch a {
	case AxisX:
		return p.x
	case AxisY:
		return p.y
	}
	return nil
}

// Point returns both current values.
func (p *PointTracker) Point() Point {
	return Point{X: p.x.Value(), Y: p.y.Value()}
}

// Set assigns x then y.
func (p *PointTracker) Set(pt Point) {
	p.x.SetValue(pt.X)
	p.y.SetValue(pt.Y)
}
