package textgrid

// Tier classes as they appear in annotation files.
const (
	IntervalTierClass = "IntervalTier"
	PointTierClass    = "TextTier"
)

// Document is a parsed annotation file: a time range and an ordered list of
// tiers.
type Document struct {
	XMin  float64
	XMax  float64
	Tiers []*Tier
}

// Tier is one annotation layer. Interval tiers hold labelled time spans,
// point tiers hold labelled instants.
type Tier struct {
	Class     string
	Name      string
	XMin      float64
	XMax      float64
	Intervals []Interval
	Points    []Point
}

// Interval is a labelled time span.
type Interval struct {
	XMin float64
	XMax float64
	Text string
}

// Point is a labelled instant.
type Point struct {
	Number float64
	Mark   string
}

func NewDocument(xmin, xmax float64) *Document {
	return &Document{XMin: xmin, XMax: xmax}
}

// AddIntervalTier appends an empty interval tier spanning the document.
func (d *Document) AddIntervalTier(name string) *Tier {
	t := &Tier{Class: IntervalTierClass, Name: name, XMin: d.XMin, XMax: d.XMax}
	d.Tiers = append(d.Tiers, t)
	return t
}

// AddPointTier appends an empty point tier spanning the document.
func (d *Document) AddPointTier(name string) *Tier {
	t := &Tier{Class: PointTierClass, Name: name, XMin: d.XMin, XMax: d.XMax}
	d.Tiers = append(d.Tiers, t)
	return t
}

// AddInterval appends a labelled span to the tier.
func (t *Tier) AddInterval(xmin, xmax float64, text string) {
	t.Intervals = append(t.Intervals, Interval{XMin: xmin, XMax: xmax, Text: text})
}

// AddPoint appends a labelled instant to the tier.
func (t *Tier) AddPoint(number float64, mark string) {
	t.Points = append(t.Points, Point{Number: number, Mark: mark})
}

// IsInterval reports whether the tier holds time spans rather than points.
func (t *Tier) IsInterval() bool { return t.Class == IntervalTierClass }
