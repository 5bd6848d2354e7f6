package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyPool_RoundRobin(t *testing.T) {
	p := NewKeyPool([]string{"a", "b", "c"})

	assert.Equal(t, "a", p.Next())
	assert.Equal(t, "b", p.Next())
	assert.Equal(t, "c", p.Next())
	assert.Equal(t, "a", p.Next(), "rotation wraps")
}

func TestKeyPool_Empty(t *testing.T) {
	p := NewKeyPool(nil)
	assert.Equal(t, "", p.Next())
	assert.Equal(t, 0, p.Len())
}

func TestKeyPool_SingleKey(t *testing.T) {
	p := NewKeyPool([]string{"only"})
	assert.Equal(t, "only", p.Next())
	assert.Equal(t, "only", p.Next())
}

func TestKeyPool_IndependentInstances(t *testing.T) {
	p1 := NewKeyPool([]string{"a", "b"})
	p2 := NewKeyPool([]string{"a", "b"})

	assert.Equal(t, "a", p1.Next())
	assert.Equal(t, "b", p1.Next())
	assert.Equal(t, "a", p2.Next(), "pools rotate independently")
}

func TestKeyPool_ConcurrentNext(t *testing.T) {
	p := NewKeyPool([]string{"a", "b", "c"})

	var wg sync.WaitGroup
	counts := make([]map[string]int, 10)
	for i := 0; i < 10; i++ {
		counts[i] = make(map[string]int)
		wg.Add(1)
		go func(m map[string]int) {
			defer wg.Done()
			for j := 0; j < 300; j++ {
				m[p.Next()]++
			}
		}(counts[i])
	}
	wg.Wait()

	total := make(map[string]int)
	for _, m := range counts {
		for k, n := range m {
			total[k] += n
		}
	}
	// 3000 draws over 3 keys is exactly even regardless of interleaving.
	assert.Equal(t, 1000, total["a"])
	assert.Equal(t, 1000, total["b"])
	assert.Equal(t, 1000, total["c"])
}
