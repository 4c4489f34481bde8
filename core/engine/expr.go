package engine

// TermKind identifies the shape of a cumulative contribution.
type TermKind int

const (
	// Step adds Height from Time onwards.
	Step TermKind = iota
	// StepAtStart adds Height from the start of Interval onwards when the
	// interval is present.
	StepAtStart
	// Pulse adds Height while Interval is executing.
	Pulse
)

// CumulTerm is one contribution of a cumulative expression.
type CumulTerm struct {
	Kind     TermKind
	Interval Interval
	Time     int
	Height   int
}

// CumulExpr is a time-indexed profile built from step and pulse terms.
// Expressions are values; Plus and Minus return new expressions.
type CumulExpr struct {
	Terms []CumulTerm
}

// StepAt returns the term adding h from time t.
func StepAt(t, h int) CumulTerm { return CumulTerm{Kind: Step, Time: t, Height: h} }

// StepAtStartOf returns the term adding h from the start of iv.
func StepAtStartOf(iv Interval, h int) CumulTerm {
	return CumulTerm{Kind: StepAtStart, Interval: iv, Height: h}
}

// PulseOf returns the term adding h during iv.
func PulseOf(iv Interval, h int) CumulTerm { return CumulTerm{Kind: Pulse, Interval: iv, Height: h} }

// Plus returns e with term added.
func (e CumulExpr) Plus(t CumulTerm) CumulExpr {
	terms := make([]CumulTerm, len(e.Terms), len(e.Terms)+1)
	copy(terms, e.Terms)
	return CumulExpr{Terms: append(terms, t)}
}

// Minus returns e with term subtracted.
func (e CumulExpr) Minus(t CumulTerm) CumulExpr {
	t.Height = -t.Height
	return e.Plus(t)
}

// ExprKind identifies an integer expression.
type ExprKind int

const (
	// MaxEnd is the maximum end time of the intervals.
	MaxEnd ExprKind = iota
	// PresenceSum is the sum of Weights[i] over present Intervals[i].
	PresenceSum
)

// IntExpr is an integer expression over interval variables.
type IntExpr struct {
	Kind      ExprKind
	Intervals []Interval
	Weights   []int
}

// MaxOfEnds returns the expression max(end(iv)) over ivs.
func MaxOfEnds(ivs []Interval) IntExpr {
	return IntExpr{Kind: MaxEnd, Intervals: ivs}
}

// WeightedPresence returns the expression sum(weights[i] * presence(ivs[i])).
func WeightedPresence(ivs []Interval, weights []int) IntExpr {
	return IntExpr{Kind: PresenceSum, Intervals: ivs, Weights: weights}
}
