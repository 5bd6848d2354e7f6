package llm

import "sync"

// KeyPool hands out API keys round-robin. Each client owns its pool so
// rotation order is stable per instance.
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	next int
}

func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{keys: keys}
}

// Next returns the next key in rotation, or "" when the pool is empty.
func (p *KeyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ""
	}
	key := p.keys[p.next]
	p.next = (p.next + 1) % len(p.keys)
	return key
}

// Len reports how many keys the pool holds.
func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
