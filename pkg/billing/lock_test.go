package billing

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	t.Parallel()

	t.Run("serializes holders of the same key", func(t *testing.T) {
		t.Parallel()
		km := newKeyedMutex()

		counter := 0
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock("sub_001")
				defer unlock()
				counter++
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, counter)
	})

	t.Run("distinct keys do not contend", func(t *testing.T) {
		t.Parallel()
		km := newKeyedMutex()

		unlockA := km.Lock("a")
		unlockB := km.Lock("b") // must not block on "a"
		unlockB()
		unlockA()
	})

	t.Run("entries are evicted once released", func(t *testing.T) {
		t.Parallel()
		km := newKeyedMutex()

		var wg sync.WaitGroup
		for i := range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock(string(rune('a' + i%10)))
				unlock()
			}()
		}
		wg.Wait()

		assert.Equal(t, 0, km.size(), "lock map must not grow with key churn")
	})
}
