package zobrist

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"

	. "github.com/cricklet/negachess/internal/helpers"
)

type CachedEvaluation[T any] struct {
	Depth       int
	Value       T
	ZobristHash uint64
}

// TranspositionTable is a fixed-size, always-replace cache keyed by zobrist
// hash. It is safe for concurrent use.
type TranspositionTable[T any] struct {
	lock sync.Mutex

	Size        int
	Cache       []CachedEvaluation[T]
	Hits        int
	Collisions  int
	DepthTooLow int
	Misses      int
}

const DefaultTranspositionTableSize = 1 << 16

func NewTranspositionTable[T any](size int) *TranspositionTable[T] {
	if size <= 0 {
		size = DefaultTranspositionTableSize
	}
	return &TranspositionTable[T]{
		Size:  size,
		Cache: make([]CachedEvaluation[T], size),
	}
}

func (t *TranspositionTable[T]) Stats() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return fmt.Sprintf("hits: %v, collisions: %v, depth too low: %v, misses: %v",
		humanize.Comma(int64(t.Hits)), humanize.Comma(int64(t.Collisions)), humanize.Comma(int64(t.DepthTooLow)), humanize.Comma(int64(t.Misses)))
}

func (t *TranspositionTable[T]) Get(hash uint64, depth int) Optional[T] {
	t.lock.Lock()
	defer t.lock.Unlock()

	v := t.Cache[hash%uint64(t.Size)]
	if v.ZobristHash == hash && hash != 0 {
		if v.Depth >= depth {
			t.Hits++
			return Some(v.Value)
		}
		t.DepthTooLow++
	} else if v.ZobristHash != 0 {
		t.Collisions++
	} else {
		t.Misses++
	}
	return Empty[T]()
}

func (t *TranspositionTable[T]) Put(hash uint64, depth int, value T) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.Cache[hash%uint64(t.Size)] = CachedEvaluation[T]{
		Depth:       depth,
		Value:       value,
		ZobristHash: hash,
	}
}
