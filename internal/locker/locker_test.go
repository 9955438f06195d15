package locker

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShardMappingIsStable(t *testing.T) {
	k := New(8)
	key := uuid.NewString()
	first := k.ShardOf(key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, k.ShardOf(key))
	}
}

func TestKeysSpreadAcrossShards(t *testing.T) {
	k := New(8)
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		seen[k.ShardOf(uuid.NewString())] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestLockSerialisesSameKey(t *testing.T) {
	k := New(4)
	key := "session-1"
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestNewClampsShardCount(t *testing.T) {
	k := New(0)
	assert.Equal(t, "shard-0", k.ShardOf("anything"))
}
