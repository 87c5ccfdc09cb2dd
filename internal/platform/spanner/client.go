// Package spanner connects to Cloud Spanner and carries its transactions in
// request contexts. Only the identity module's account store uses it.
package spanner

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/option"
)

// Config names the database holding the Users and UserLogins tables.
type Config struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
	// DatabaseRole selects a fine-grained access control role; empty uses
	// the caller's IAM permissions.
	DatabaseRole string
	// Endpoint overrides the service address, e.g. for a private endpoint.
	// The emulator is picked up from SPANNER_EMULATOR_HOST without it.
	Endpoint string
}

// DSN returns the fully qualified database name.
func (c Config) DSN() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s", c.ProjectID, c.InstanceID, c.DatabaseID)
}

// NewClient opens a client for cfg. The caller closes it.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*spanner.Client, error) {
	if cfg.ProjectID == "" || cfg.InstanceID == "" || cfg.DatabaseID == "" {
		return nil, errors.New("spanner: project, instance and database are required")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := spanner.NewClientWithConfig(ctx, cfg.DSN(), spanner.ClientConfig{
		DatabaseRole:  cfg.DatabaseRole,
		SessionLabels: map[string]string{"service": "gymunity"},
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening spanner database %s: %w", cfg.DSN(), err)
	}
	return client, nil
}
