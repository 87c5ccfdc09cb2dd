package spanner

import (
	"context"
	"fmt"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"google.golang.org/api/option"
)

// ApplyDDL runs statements as one schema update and waits for it to finish.
// Statements should use IF NOT EXISTS so a rerun is a no-op.
func ApplyDDL(ctx context.Context, cfg Config, statements []string, opts ...option.ClientOption) error {
	if len(statements) == 0 {
		return nil
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	admin, err := database.NewDatabaseAdminClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("opening spanner admin client: %w", err)
	}
	defer admin.Close()

	op, err := admin.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
		Database:   cfg.DSN(),
		Statements: statements,
	})
	if err != nil {
		return fmt.Errorf("updating schema of %s: %w", cfg.DSN(), err)
	}
	if err := op.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for schema update of %s: %w", cfg.DSN(), err)
	}
	return nil
}
