package helpers

import (
	"fmt"
	"sync"
)

type PoolStats struct {
	creates int
	resets  int
	hits    int
}

func (s PoolStats) String() string {
	return fmt.Sprint("creates: ", s.creates, ", resets: ", s.resets, ", hits: ", s.hits)
}

// CreatePool returns get/release functions over a bounded ring of reusable
// values. Released values beyond the ring capacity are dropped.
func CreatePool[T any](create func() T, reset func(*T)) (func() *T, func(*T), func() PoolStats) {
	const capacity = 256
	available := [capacity]*T{}
	startIndex := 0
	size := 0

	lock := sync.Mutex{}
	stats := PoolStats{}

	var get = func() *T {
		lock.Lock()
		if size > 0 {
			result := available[startIndex]
			available[startIndex] = nil
			startIndex = (startIndex + 1) % capacity
			size--
			stats.hits++
			lock.Unlock()
			return result
		}
		stats.creates++
		lock.Unlock()

		result := create()
		return &result
	}

	var release = func(t *T) {
		reset(t)

		lock.Lock()
		defer lock.Unlock()
		stats.resets++
		if size == capacity {
			return
		}
		available[(startIndex+size)%capacity] = t
		size++
	}

	var getStats = func() PoolStats {
		lock.Lock()
		defer lock.Unlock()
		return stats
	}

	return get, release, getStats
}
