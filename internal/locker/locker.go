// Package locker provides per-key mutual exclusion over a fixed set of mutex
// shards. Keys are placed on shards with a consistent-hash ring so the
// mapping stays stable for the life of the process.
package locker

import (
	"fmt"
	"sync"

	"github.com/buraksezer/consistent"
	"github.com/cespare/xxhash/v2"
)

type shard struct {
	name string
	mu   sync.Mutex
}

func (s *shard) String() string {
	return s.name
}

type hasher struct{}

func (hasher) Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Keyed serialises work per key. The zero value is not usable; call New.
type Keyed struct {
	ring   *consistent.Consistent
	shards map[string]*shard
}

// New builds a Keyed locker with n shards (minimum 1).
func New(n int) *Keyed {
	if n < 1 {
		n = 1
	}
	members := make([]consistent.Member, 0, n)
	shards := make(map[string]*shard, n)
	for i := 0; i < n; i++ {
		s := &shard{name: fmt.Sprintf("shard-%d", i)}
		shards[s.name] = s
		members = append(members, s)
	}
	cfg := consistent.Config{
		PartitionCount:    271,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            hasher{},
	}
	return &Keyed{ring: consistent.New(members, cfg), shards: shards}
}

func (k *Keyed) shardFor(key string) *shard {
	m := k.ring.LocateKey([]byte(key))
	return k.shards[m.String()]
}

// Lock blocks until key's shard is held and returns the unlock func.
func (k *Keyed) Lock(key string) func() {
	s := k.shardFor(key)
	s.mu.Lock()
	return s.mu.Unlock
}

// ShardOf names the shard a key maps to.
func (k *Keyed) ShardOf(key string) string {
	return k.shardFor(key).name
}
