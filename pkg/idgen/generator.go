package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Generator produces unique order-run identifiers.
type Generator interface {
	GenerateID() int64
	OrderRef() string
}

// SnowflakeGenerator implements Generator using Twitter Snowflake ids.
type SnowflakeGenerator struct {
	node *snowflake.Node
	mu   sync.Mutex
}

// NewSnowflakeGenerator initializes a new ID generator.
// nodeID must be unique per instance (0-1023) to prevent collisions.
func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	return &SnowflakeGenerator{
		node: node,
	}, nil
}

// GenerateID returns a new unique 64-bit integer ID.
func (g *SnowflakeGenerator) GenerateID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.node.Generate().Int64()
}

// OrderRef returns a short human-pasteable reference for an order run,
// e.g. "ord-4k2jb0x9".
func (g *SnowflakeGenerator) OrderRef() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return "ord-" + g.node.Generate().Base36()
}
