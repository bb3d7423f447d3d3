package schemaplan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/tordrt/schemaplan/internal/db"
	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/migration"
	"github.com/tordrt/schemaplan/internal/schema"
)

// ShadowDriftError means the desired schema did not survive a round trip
// through the shadow database: describing it back still differs.
type ShadowDriftError struct {
	Database string
	Drift    *Migration
}

func (e *ShadowDriftError) Error() string {
	return fmt.Sprintf("shadow database %s drifted from the desired schema:\n%s", e.Database, migration.Summary(e.Drift))
}

// ShadowDatabaseName returns a fresh name for a throwaway database.
func ShadowDatabaseName() string {
	return "schemaplan_shadow_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidateOnShadow checks that desired can be created from nothing: it applies
// diff(empty, desired) to a throwaway database on the shadow server, describes
// the result and requires it to equal desired. The throwaway database is
// dropped afterwards.
//
// With ReuseShadow set, shadowURL must point at an empty database, which is
// used as is and left in place.
func ValidateOnShadow(ctx context.Context, shadowURL string, desired *Schema, opts *Options) error {
	target, err := db.ParseURL(shadowURL)
	if err != nil {
		return err
	}
	logger := opts.logger().With("dialect", string(target.Dialect))

	if opts != nil && opts.ReuseShadow {
		return validateOn(ctx, shadowURL, desired, opts)
	}

	name := ShadowDatabaseName()
	shadow, err := target.WithDatabase(name)
	if err != nil {
		return err
	}

	drop, err := createDatabase(ctx, target, shadow)
	if err != nil {
		return fmt.Errorf("failed to create shadow database: %w", err)
	}
	logger.Info("created shadow database", "database", name)
	defer func() {
		// The shadow database is dropped even when ctx is done.
		if err := drop(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to drop shadow database", "database", name, "error", err)
			return
		}
		logger.Info("dropped shadow database", "database", name)
	}()

	return validateOn(ctx, shadow.URL, desired, opts)
}

func validateOn(ctx context.Context, dbURL string, desired *Schema, opts *Options) error {
	conn, err := db.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(ctx) }()
	d := conn.Dialect()

	shadowOpts := Options{Namespaces: namespacesOf(desired, d), Logger: opts.logger()}

	current, err := Describe(ctx, conn, &shadowOpts)
	if err != nil {
		return err
	}
	if !current.IsEmpty() {
		return fmt.Errorf("shadow database is not empty")
	}

	m, err := Diff(current, desired, d, nil)
	if err != nil {
		return err
	}
	plan, err := Classify(ctx, conn, m)
	if err != nil {
		return err
	}
	if _, err := Execute(ctx, conn, plan, &shadowOpts); err != nil {
		return err
	}

	described, err := Describe(ctx, conn, &shadowOpts)
	if err != nil {
		return err
	}
	drift, err := Diff(described, desired, d, nil)
	if err != nil {
		return err
	}
	if !drift.IsEmpty() {
		return &ShadowDriftError{Database: dbURL, Drift: drift}
	}
	return nil
}

// namespacesOf lists the namespaces desired lives in. The default namespace
// always takes part, so a schema without tables still describes it.
func namespacesOf(s *schema.Schema, d dialect.Dialect) []string {
	if !d.Capabilities().Namespaces {
		return nil
	}
	names := []string{d.DefaultNamespace()}
	for _, n := range s.Namespaces() {
		if n.Name() != "" && n.Name() != d.DefaultNamespace() {
			names = append(names, n.Name())
		}
	}
	return names
}

// createDatabase creates the shadow database on the server of target and
// returns a function dropping it again. For SQLite the database is a file
// next to the shadow file, created on first connect.
func createDatabase(ctx context.Context, target, shadow db.Target) (func(context.Context) error, error) {
	if target.Dialect == dialect.SQLite {
		return func(context.Context) error {
			err := os.Remove(shadow.Database)
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}, nil
	}

	admin, err := db.Open(ctx, target)
	if err != nil {
		return nil, err
	}
	quoted := target.Dialect.Quote(shadow.Database)
	if err := admin.Exec(ctx, "CREATE DATABASE "+quoted); err != nil {
		_ = admin.Close(ctx)
		return nil, err
	}
	return func(ctx context.Context) error {
		defer func() { _ = admin.Close(ctx) }()
		return admin.Exec(ctx, "DROP DATABASE "+quoted)
	}, nil
}
