package pipeline

import "math"

// DelayStats accumulates delay samples with Welford's streaming algorithm.
// Memory stays constant, so an unbounded consumer run (count=0) can feed it
// forever without growing a sample slice.
type DelayStats struct {
	count int64
	mean  float64
	m2    float64
	min   float64
	max   float64
}

// Add folds one sample into the accumulator.
func (s *DelayStats) Add(sample float64) {
	s.count++
	if s.count == 1 {
		s.min, s.max = sample, sample
	} else {
		if sample < s.min {
			s.min = sample
		}
		if sample > s.max {
			s.max = sample
		}
	}
	delta := sample - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (sample - s.mean)
}

func (s *DelayStats) Count() int64 { return s.count }

func (s *DelayStats) Mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.mean
}

// StdDev returns the population standard deviation.
func (s *DelayStats) StdDev() float64 {
	if s.count == 0 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.count))
}

func (s *DelayStats) Min() float64 { return s.min }

func (s *DelayStats) Max() float64 { return s.max }

// Summary is the end-of-run view of the accumulated delays.
type Summary struct {
	Count  int64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func (s *DelayStats) Summary() Summary {
	return Summary{
		Count:  s.Count(),
		Mean:   s.Mean(),
		StdDev: s.StdDev(),
		Min:    s.Min(),
		Max:    s.Max(),
	}
}
