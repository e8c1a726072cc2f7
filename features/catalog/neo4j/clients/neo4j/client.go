// Package neo4j hosts the narrow graph-driver wrapper used by the catalogue
// repository.
package neo4j

import (
	"context"
	"errors"
	"fmt"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"goa.design/clue/health"
)

// Client exposes the read-only graph operations used by the catalogue
// repository.
type Client interface {
	health.Pinger

	// ReadQuery runs a read-only Cypher query and returns one map per
	// record, keyed by the query's return aliases.
	ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)

	// Close releases the underlying driver. The client is unusable
	// afterwards.
	Close(ctx context.Context) error
}

// Options configures the graph client.
type Options struct {
	// Driver is the underlying Neo4j driver. Required.
	Driver neo4jdriver.DriverWithContext

	// Database selects the database queries run against. Empty uses the
	// server default.
	Database string
}

const clientName = "catalog-neo4j"

type client struct {
	drv      neo4jdriver.DriverWithContext
	database string
}

// New returns a Client backed by the given driver.
func New(opts Options) (Client, error) {
	if opts.Driver == nil {
		return nil, errors.New("neo4j driver is required")
	}
	return &client{drv: opts.Driver, database: opts.Database}, nil
}

// Connect dials the graph at uri with basic auth, verifies connectivity and
// returns a Client over the new driver.
func Connect(ctx context.Context, uri, user, password string) (Client, error) {
	drv, err := neo4jdriver.NewDriverWithContext(uri, neo4jdriver.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("dial graph: %w", err)
	}
	if err := drv.VerifyConnectivity(ctx); err != nil {
		_ = drv.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}
	return New(Options{Driver: drv})
}

func (c *client) Name() string {
	return clientName
}

func (c *client) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.drv.VerifyConnectivity(ctx)
}

func (c *client) ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	session := c.drv.NewSession(ctx, neo4jdriver.SessionConfig{
		AccessMode:   neo4jdriver.AccessModeRead,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	collected, err := session.ExecuteRead(ctx, func(tx neo4jdriver.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}
	records, ok := collected.([]*neo4jdriver.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", collected)
	}
	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		rows[i] = rec.AsMap()
	}
	return rows, nil
}

func (c *client) Close(ctx context.Context) error {
	return c.drv.Close(ctx)
}
