package reel

// TickInterval is the fixed simulation step in milliseconds (60 ticks/s).
const TickInterval = 1000.0 / 60.0

// maxFrameTicks caps how many tick-intervals the accumulator may hold.
// Excess frame time beyond the cap is discarded instead of burned down in a
// tight loop, so one long stall cannot snowball into a spiral of death.
const maxFrameTicks = 5

// tickEpsilon absorbs float64 rounding in the accumulator arithmetic:
// 1000.0/60.0 rounds a hair above the exact 50/3, so without slack, frame
// times summing to an exact multiple of the interval would come up one tick
// short.
const tickEpsilon = 1e-9

// RNG is a 32-bit linear congruential generator. Two RNGs seeded with the
// same value produce identical sequences, which is what makes replays and
// cross-run simulations reproducible.
type RNG struct {
	state uint32
}

// Seed resets the generator state.
func (r *RNG) Seed(v uint32) {
	r.state = v
}

// Random returns the next value in [0, 1).
func (r *RNG) Random() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / 4294967296.0
}

// RandomInt returns the next value in [min, max], bounds inclusive.
func (r *RNG) RandomInt(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + int(r.Random()*float64(max-min+1))
}

// Scheduler converts wall-clock frame time into a fixed number of
// deterministic simulation ticks plus one render callback per frame.
// Running and paused are orthogonal: a paused scheduler still renders
// (with interpolation 0), it just stops ticking.
type Scheduler struct {
	running bool
	paused  bool

	accumulator float64 // milliseconds of unsimulated time, < TickInterval after Step
	ticks       uint64
	frames      uint64
	dropped     uint64

	rng RNG

	// TickFunc runs once per simulation tick.
	TickFunc func()
	// RenderFunc runs once per Step with the interpolation fraction
	// (accumulator/TickInterval, 0 while paused) and the raw frame time.
	RenderFunc func(alpha, frameTime float64)
}

// NewScheduler creates a stopped scheduler with the RNG seeded to seed.
func NewScheduler(seed uint32) *Scheduler {
	s := &Scheduler{}
	s.rng.Seed(seed)
	return s
}

// Start begins ticking and resets the accumulator and tick/frame counters.
func (s *Scheduler) Start() {
	s.running = true
	s.paused = false
	s.accumulator = 0
	s.ticks = 0
	s.frames = 0
	s.dropped = 0
}

// Stop halts the scheduler. Step becomes a no-op until Start.
func (s *Scheduler) Stop() {
	s.running = false
}

// Pause stops ticking only; rendering continues with interpolation 0.
func (s *Scheduler) Pause() {
	s.paused = true
}

// Resume restarts ticking. The accumulator is reset so time that passed
// while paused does not replay as a catch-up burst.
func (s *Scheduler) Resume() {
	s.paused = false
	s.accumulator = 0
}

// Running reports whether Start has been called without a matching Stop.
func (s *Scheduler) Running() bool { return s.running }

// Paused reports whether ticking is suspended.
func (s *Scheduler) Paused() bool { return s.paused }

// TickCount returns the number of simulation ticks since Start.
func (s *Scheduler) TickCount() uint64 { return s.ticks }

// FrameCount returns the number of Step calls since Start.
func (s *Scheduler) FrameCount() uint64 { return s.frames }

// DroppedTicks returns how many Step calls hit the accumulator cap.
func (s *Scheduler) DroppedTicks() uint64 { return s.dropped }

// Step advances the simulation by frameTime milliseconds: zero or more
// fixed ticks followed by exactly one render callback.
func (s *Scheduler) Step(frameTime float64) {
	if !s.running {
		return
	}
	s.frames++
	if !s.paused {
		s.accumulator += frameTime
		if limit := maxFrameTicks * TickInterval; s.accumulator > limit {
			s.accumulator = limit
			s.dropped++
		}
		for s.accumulator >= TickInterval-tickEpsilon {
			s.accumulator -= TickInterval
			if s.TickFunc != nil {
				s.TickFunc()
			}
			s.ticks++
		}
		if s.accumulator < 0 {
			s.accumulator = 0
		}
	}
	alpha := s.accumulator / TickInterval
	if s.paused {
		alpha = 0
	}
	if s.RenderFunc != nil {
		s.RenderFunc(alpha, frameTime)
	}
}

// Seed reseeds the scheduler's RNG.
func (s *Scheduler) Seed(v uint32) {
	s.rng.Seed(v)
}

// Random draws the next value in [0, 1) from the scheduler's RNG.
func (s *Scheduler) Random() float64 {
	return s.rng.Random()
}

// RandomInt draws the next value in [min, max] from the scheduler's RNG.
func (s *Scheduler) RandomInt(min, max int) int {
	return s.rng.RandomInt(min, max)
}
