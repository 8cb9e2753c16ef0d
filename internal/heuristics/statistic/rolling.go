package statistic

// RollingAverage tracks a smoothed average of integer observations.
// Until WindowSize samples are seen it is the exact cumulative mean; after that
// each new value replaces 1/WindowSize of the average.
type RollingAverage struct {
	windowSize int
	tolerance  float64
	samples    int64
	avg        float64
}

// RollingState is the persisted form of a RollingAverage.
type RollingState struct {
	Samples int64
	Average float64
}

// NewRollingAverage creates an empty rolling average.
func NewRollingAverage(params Parameters) *RollingAverage {
	return &RollingAverage{
		windowSize: params.WindowSize,
		tolerance:  params.EqualityTolerance,
	}
}

// RestoreRollingAverage rebuilds a rolling average from its persisted state.
func RestoreRollingAverage(state RollingState, params Parameters) *RollingAverage {
	r := NewRollingAverage(params)
	r.samples = state.Samples
	r.avg = state.Average
	return r
}

// Record folds one observation into the average.
func (r *RollingAverage) Record(value int64) {
	r.samples++
	n := r.samples
	if n > int64(r.windowSize) {
		n = int64(r.windowSize)
	}
	r.avg += (float64(value) - r.avg) / float64(n)
}

// Average returns the current estimate, 0 when nothing was recorded.
func (r *RollingAverage) Average() float64 {
	return r.avg
}

// Samples returns how many observations were recorded.
func (r *RollingAverage) Samples() int64 {
	return r.samples
}

// State exports the persisted form.
func (r *RollingAverage) State() RollingState {
	return RollingState{Samples: r.samples, Average: r.avg}
}

// Equal reports whether both averages saw the same number of samples and
// agree within the tolerance.
func (r *RollingAverage) Equal(other *RollingAverage) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.samples == other.samples && ApproxEqual(r.avg, other.avg, r.tolerance)
}
