package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolReuse(t *testing.T) {
	get, release, stats := CreatePool(
		func() []float64 { return make([]float64, 4) },
		func(t *[]float64) {
			for i := range *t {
				(*t)[i] = 0
			}
		})

	a := get()
	(*a)[0] = 5
	release(a)

	b := get()
	assert.Same(t, a, b)
	assert.Equal(t, 0.0, (*b)[0])

	c := get()
	assert.NotSame(t, b, c)

	s := stats()
	assert.Equal(t, 2, s.creates)
	assert.Equal(t, 1, s.hits)
	assert.Equal(t, 1, s.resets)
}
