// Package analysis reports inter-arrival gaps between stored events.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

var (
	// ErrNoData is returned when the event table is empty.
	ErrNoData = errors.New("event table is empty")
	// ErrNotEnoughData is returned when fewer than two events are stored.
	ErrNotEnoughData = errors.New("at least two events are required to compute gaps")
)

// TimestampReader reads event timestamps in ascending order.
type TimestampReader interface {
	ListTimestamps(ctx context.Context) ([]time.Time, error)
}

// Summary describes a gap sample in seconds. Std is the sample standard
// deviation and is NaN for a single gap.
type Summary struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	Std    float64
	Q25    float64
	Q75    float64
}

// Load returns the gaps, in seconds, between consecutive stored events.
func Load(ctx context.Context, r TimestampReader) ([]float64, error) {
	timestamps, err := r.ListTimestamps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load event timestamps: %w", err)
	}
	switch len(timestamps) {
	case 0:
		return nil, ErrNoData
	case 1:
		return nil, ErrNotEnoughData
	}
	return Gaps(timestamps), nil
}

// Gaps returns ts[i+1]-ts[i] in seconds. ts must be sorted ascending.
func Gaps(ts []time.Time) []float64 {
	if len(ts) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		gaps = append(gaps, ts[i].Sub(ts[i-1]).Seconds())
	}
	return gaps
}

// Describe computes the descriptive statistics of gaps.
func Describe(gaps []float64) (Summary, error) {
	if len(gaps) == 0 {
		return Summary{}, ErrNotEnoughData
	}
	data := stats.Float64Data(gaps)

	var (
		s   = Summary{N: len(gaps)}
		err error
	)
	if s.Min, err = data.Min(); err != nil {
		return Summary{}, err
	}
	if s.Max, err = data.Max(); err != nil {
		return Summary{}, err
	}
	if s.Mean, err = data.Mean(); err != nil {
		return Summary{}, err
	}
	if s.Median, err = data.Median(); err != nil {
		return Summary{}, err
	}
	if len(gaps) > 1 {
		if s.Std, err = data.StandardDeviationSample(); err != nil {
			return Summary{}, err
		}
	} else {
		s.Std = math.NaN()
	}

	sorted := append([]float64(nil), gaps...)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q75 = quantile(sorted, 0.75)
	return s, nil
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}
