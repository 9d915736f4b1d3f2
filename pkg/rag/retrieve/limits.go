package retrieve

// Limits is the cascading candidate budget. Each stage's budget is derived
// from how many candidates the previous stage actually produced, so a broad
// first sweep still funnels down to a small re-rank set.
type Limits struct {
	First  int
	Second int
	Third  int
}

// DefaultLimits returns the budgets used before any stage has run.
func DefaultLimits() *Limits {
	return &Limits{First: 500, Second: 50, Third: 15}
}

// SetSecond picks the stage-two budget from the size of the stage-one
// candidate pool.
func (l *Limits) SetSecond(firstCount int) {
	switch {
	case firstCount > 1200:
		l.Second = 120
	case firstCount > 600:
		l.Second = 80
	case firstCount > 300:
		l.Second = 50
	case firstCount > 100:
		l.Second = 30
	case firstCount > 50:
		l.Second = 25
	case firstCount > 25:
		l.Second = 15
	default:
		l.Second = 10
	}
}

// SetThird picks the final re-rank budget from the size of the narrowed pool.
func (l *Limits) SetThird(secondCount int) {
	switch {
	case secondCount > 100:
		l.Third = 30
	case secondCount > 50:
		l.Third = 20
	case secondCount > 30:
		l.Third = 15
	case secondCount > 20:
		l.Third = 12
	case secondCount > 14:
		l.Third = 8
	default:
		l.Third = 5
	}
}
