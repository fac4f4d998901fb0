package pkguid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// snowflakeEpoch is 2025-01-01T00:00:00Z in Unix milliseconds.
const snowflakeEpoch int64 = 1735689600000

// maxNodeID is the largest node id the default 10 node bits allow.
const maxNodeID int64 = 1<<10 - 1

//nolint:gochecknoglobals // the library reads its epoch from a package var
var setEpoch sync.Once

// Snowflake generates numeric ids unique across up to 1024 nodes.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake uses nodeID when it is in 0..1023 and a random node otherwise.
// Instances sharing a store should be given distinct node ids.
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		n, err := randomNodeID()
		if err != nil {
			return nil, fmt.Errorf("pick snowflake node: %w", err)
		}
		nodeID = n
	}

	setEpoch.Do(func() { snowflake.Epoch = snowflakeEpoch })

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

func randomNodeID() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxNodeID+1))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
