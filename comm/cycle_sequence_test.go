package comm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var seq = NewCycleSequence(0, 0xFFFF)

func TestCycleSequence_Wrap(t *testing.T) {
	s := NewCycleSequence(1, 3)
	var got []uint16
	for i := 0; i < 7; i++ {
		got = append(got, s.NextVal())
	}
	assert.Equal(t, []uint16{1, 2, 3, 1, 2, 3, 1}, got)
}

func TestCycleSequence_FullRange(t *testing.T) {
	s := NewCycleSequence(0, 0xFFFF)
	for i := 0; i <= 0xFFFF; i++ {
		assert.Equal(t, uint16(i), s.NextVal())
	}
	assert.Equal(t, uint16(0), s.NextVal())
}

func TestCycleSequence_Concurrent(t *testing.T) {
	s := NewCycleSequence(0, 999)
	seen := make([]int32, 1000)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v := s.NextVal()
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	for i, n := range seen {
		assert.Equal(t, int32(1), n, "value %d", i)
	}
}

func TestTrimStr(t *testing.T) {
	assert.Equal(t, "abc", TrimStr([]byte{'a', 'b', 'c', 0, 'd'}))
	assert.Equal(t, "abc", TrimStr([]byte("abc")))
	assert.Equal(t, "", TrimStr([]byte{0, 1}))
}

func BenchmarkCycleSequence_NextVal(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq.NextVal()
	}
}
