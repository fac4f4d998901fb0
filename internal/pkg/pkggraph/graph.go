package pkggraph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")

// Writer runs write statements against a graph database.
type Writer interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configures the Neo4j client.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

type Neo4j struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4j connects over Bolt and verifies connectivity before returning.
func NewNeo4j(ctx context.Context, opts Options) (*Neo4j, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &Neo4j{driver: driver, database: opts.Database}, nil
}

func (n *Neo4j) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, n.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(n.database),
		neo4j.ExecuteQueryWithWritersRouting(),
	)
	return err
}

func (n *Neo4j) VerifyConnectivity(ctx context.Context) error {
	return n.driver.VerifyConnectivity(ctx)
}

func (n *Neo4j) Close(ctx context.Context) error {
	return n.driver.Close(ctx)
}

// Query is one statement seen by a Memory writer.
type Query struct {
	Cypher string
	Params map[string]any
}

// Memory records writes instead of sending them anywhere.
type Memory struct {
	mu      sync.Mutex
	err     error
	queries []Query
}

func NewMemory() *Memory {
	return &Memory{}
}

// FailWith makes subsequent writes return err.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) ExecuteWrite(_ context.Context, cypher string, params map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	cp := make(map[string]any, len(params))
	for k, v := range params {
		cp[k] = v
	}
	m.queries = append(m.queries, Query{Cypher: cypher, Params: cp})

	return nil
}

func (m *Memory) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Memory) Close(context.Context) error {
	return nil
}

// Queries returns a snapshot of the recorded writes.
func (m *Memory) Queries() []Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Query(nil), m.queries...)
}
