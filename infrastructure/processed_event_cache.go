package infrastructure

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// ProcessedEventCache remembers recently handled purchase event ids so broker
// redeliveries can be acknowledged without opening a transaction. The database
// table stays authoritative; a miss here only costs a round trip.
type ProcessedEventCache struct {
	entries *lru.Cache[string, struct{}]
}

// NewProcessedEventCache creates a cache holding at most size ids
func NewProcessedEventCache(size int) (*ProcessedEventCache, error) {
	entries, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &ProcessedEventCache{entries: entries}, nil
}

// Seen reports whether eventID was recently processed
func (c *ProcessedEventCache) Seen(eventID string) bool {
	return c.entries.Contains(eventID)
}

// Remember records eventID, evicting the least recently added id when full
func (c *ProcessedEventCache) Remember(eventID string) {
	c.entries.Add(eventID, struct{}{})
}

// Len returns the number of cached ids
func (c *ProcessedEventCache) Len() int {
	return c.entries.Len()
}
