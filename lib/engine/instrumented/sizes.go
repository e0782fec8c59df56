package instrumented

import (
	"math"
	"sync"
)

// ----------------------------------------------------------------------------
// ValueSizes
// ----------------------------------------------------------------------------

// sizeBoundaries are the inclusive upper bounds of the buckets. The first
// buckets follow the fixed column widths, then they grow by 4x up to the
// long value range.
var sizeBoundaries = []int{
	0, 1, 2, 4, 8, 16, // fixed-size columns
	64, 255, // short variable columns
	1024, 4096, 16384, 65536, // long values
	262144, 1048576, 4194304, // large long values
}

// ValueSizes tracks the distribution of column payload sizes that cross the
// call surface. The zero value is not usable; use newValueSizes.
//
// Thread-safe: every method is safe for concurrent use
type ValueSizes struct {
	mutex   sync.RWMutex
	buckets []int64 // len(sizeBoundaries)+1, the last one is unbounded
	count   int64
	sum     int64
	max     int
}

func newValueSizes() *ValueSizes {
	return &ValueSizes{buckets: make([]int64, len(sizeBoundaries)+1)}
}

// Add records one payload of size bytes.
func (v *ValueSizes) Add(size int) {
	if size < 0 {
		return
	}
	v.mutex.Lock()
	defer v.mutex.Unlock()

	i := len(sizeBoundaries)
	for j, bound := range sizeBoundaries {
		if size <= bound {
			i = j
			break
		}
	}
	v.buckets[i]++
	v.count++
	v.sum += int64(size)
	if size > v.max {
		v.max = size
	}
}

// Count returns the number of recorded payloads.
func (v *ValueSizes) Count() int64 {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.count
}

// Total returns the number of bytes recorded.
func (v *ValueSizes) Total() int64 {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.sum
}

// Max returns the largest payload seen.
func (v *ValueSizes) Max() int {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return v.max
}

// Mean returns the average payload size, 0 when nothing was recorded.
func (v *ValueSizes) Mean() int {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	if v.count == 0 {
		return 0
	}
	return int(v.sum / v.count)
}

// Percentile estimates the payload size below which p percent of the
// samples fall. The estimate is the upper bound of the bucket holding the
// sample, capped by the largest payload seen.
func (v *ValueSizes) Percentile(p int) int {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	if v.count == 0 || p < 0 || p > 100 {
		return 0
	}
	target := int64(math.Ceil(float64(v.count) * float64(p) / 100.0))
	if target == 0 {
		target = 1
	}
	var cumulative int64
	for i, n := range v.buckets {
		cumulative += n
		if cumulative < target {
			continue
		}
		if i < len(sizeBoundaries) && sizeBoundaries[i] < v.max {
			return sizeBoundaries[i]
		}
		return v.max
	}
	return v.max
}

// Distribution returns the bucket upper bounds and the share of samples in
// each bucket, in percent. The last share belongs to the unbounded bucket.
func (v *ValueSizes) Distribution() ([]int, []float64) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()

	shares := make([]float64, len(v.buckets))
	if v.count == 0 {
		return sizeBoundaries, shares
	}
	for i, n := range v.buckets {
		shares[i] = float64(n) * 100.0 / float64(v.count)
	}
	return sizeBoundaries, shares
}
