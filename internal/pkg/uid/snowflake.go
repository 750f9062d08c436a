package uid

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates Twitter-style ids for a single node.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for node (0-1023).
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("uid: snowflake node %d: %w", node, err)
	}

	return &Snowflake{node: n}, nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
