package heuristics

// LivenessTracker counts sampled nodes that were usable (live) versus skipped
// (dead) and carries the best known bound on the node population.
// Derived values change only on Recalculate.
type LivenessTracker struct {
	live     int64
	dead     int64
	maxNodes int64

	liveRatio      float64
	maxAddressable int64
}

// LivenessState is the persisted form of a LivenessTracker.
type LivenessState struct {
	Live           int64
	Dead           int64
	MaxNodes       int64
	LiveRatio      float64
	MaxAddressable int64
}

// NewLivenessTracker creates an empty tracker with an unknown (0) population bound.
func NewLivenessTracker() *LivenessTracker {
	return &LivenessTracker{}
}

func restoreLivenessTracker(s LivenessState) *LivenessTracker {
	return &LivenessTracker{
		live:           s.Live,
		dead:           s.Dead,
		maxNodes:       s.MaxNodes,
		liveRatio:      s.LiveRatio,
		maxAddressable: s.MaxAddressable,
	}
}

func (l *LivenessTracker) RecordLive() { l.live++ }

func (l *LivenessTracker) RecordDead() { l.dead++ }

// SetMaxNodes records the upper bound on the node population.
func (l *LivenessTracker) SetMaxNodes(n int64) { l.maxNodes = n }

// Recalculate derives the live ratio and the addressable node count.
func (l *LivenessTracker) Recalculate() {
	total := l.live + l.dead
	if total == 0 {
		l.liveRatio = 0
	} else {
		l.liveRatio = float64(l.live) / float64(total)
	}
	l.maxAddressable = l.maxNodes
}

// LiveRatio is live / (live + dead) as of the last Recalculate.
func (l *LivenessTracker) LiveRatio() float64 { return l.liveRatio }

// MaxAddressable is the population bound as of the last Recalculate.
func (l *LivenessTracker) MaxAddressable() int64 { return l.maxAddressable }

// EstimatedLiveNodes extrapolates the sampled live ratio to the whole population.
func (l *LivenessTracker) EstimatedLiveNodes() float64 {
	return l.liveRatio * float64(l.maxAddressable)
}

func (l *LivenessTracker) Live() int64 { return l.live }

func (l *LivenessTracker) Dead() int64 { return l.dead }

func (l *LivenessTracker) State() LivenessState {
	return LivenessState{
		Live:           l.live,
		Dead:           l.dead,
		MaxNodes:       l.maxNodes,
		LiveRatio:      l.liveRatio,
		MaxAddressable: l.maxAddressable,
	}
}

// Equal compares counters, bound and derived values.
func (l *LivenessTracker) Equal(other *LivenessTracker) bool {
	return *l == *other
}
