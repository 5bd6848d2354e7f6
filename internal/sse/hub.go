package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Event struct {
	ID   int64       `json:"id"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type subscriber struct {
	ch chan Event
}

// Hub fans generation progress events out to SSE subscribers, keyed by idea
// ID. Events are also appended to a redis list so a reconnecting client can
// replay from its Last-Event-ID.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	rdb         *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		subscribers: make(map[string][]*subscriber),
		rdb:         rdb,
	}
}

func streamKey(ideaID string) string {
	return fmt.Sprintf("idea:stream:%s", ideaID)
}

func (h *Hub) Subscribe(ideaID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscriber{ch: make(chan Event, 256)}
	h.subscribers[ideaID] = append(h.subscribers[ideaID], sub)

	unsub := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[ideaID]
		for i, s := range subs {
			if s == sub {
				h.subscribers[ideaID] = append(subs[:i], subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		if len(h.subscribers[ideaID]) == 0 {
			delete(h.subscribers, ideaID)
		}
	}
	return sub.ch, unsub
}

func (h *Hub) Broadcast(ideaID string, event Event) {
	ctx := context.Background()
	key := streamKey(ideaID)

	data, _ := json.Marshal(event)
	h.rdb.RPush(ctx, key, string(data))

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[ideaID] {
		select {
		case sub.ch <- event:
		default:
			// drop if full
		}
	}
}

func (h *Hub) ReplayFrom(ideaID string, fromID int64) ([]Event, error) {
	ctx := context.Background()

	items, err := h.rdb.LRange(ctx, streamKey(ideaID), fromID, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(items))
	for i, item := range items {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			continue
		}
		ev.ID = fromID + int64(i)
		events = append(events, ev)
	}
	return events, nil
}

func (h *Hub) SetExpire(ideaID string, ttl time.Duration) {
	ctx := context.Background()
	h.rdb.Expire(ctx, streamKey(ideaID), ttl)
}

func ParseLastEventID(header string) int64 {
	if header == "" {
		return 0
	}
	id, _ := strconv.ParseInt(header, 10, 64)
	return id
}
