//go:build integration

package schemaplan_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan"
	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/snapshot"
)

// shopSnapshot is a small shop schema spelled in the native types of one
// dialect.
func shopSnapshot(d dialect.Dialect, intType, stringType string) string {
	return fmt.Sprintf(`dialect: %s
tables:
  - name: users
    columns:
      - name: id
        type: %[2]s
        autoincrement: true
      - name: email
        type: %[3]s
      - name: nickname
        type: %[3]s
        nullable: true
    primary_key:
      name: users_pkey
      columns:
        - name: id
    indexes:
      - name: users_email_key
        kind: unique
        columns:
          - name: email
  - name: orders
    columns:
      - name: id
        type: %[2]s
        autoincrement: true
      - name: user_id
        type: %[2]s
    primary_key:
      name: orders_pkey
      columns:
        - name: id
    indexes:
      - name: orders_user_id_idx
        columns:
          - name: user_id
    foreign_keys:
      - name: orders_user_id_fkey
        columns: [user_id]
        references:
          table: users
          columns: [id]
        on_delete: CASCADE
`, d, intType, stringType)
}

func TestIntegrationShadowRoundTrip(t *testing.T) {
	servers := []struct {
		name       string
		env        string
		dialect    dialect.Dialect
		intType    string
		stringType string
	}{
		{name: "postgres", env: "TEST_POSTGRES_URL", dialect: dialect.Postgres, intType: "Integer", stringType: "VarChar(191)"},
		{name: "mysql", env: "TEST_MYSQL_URL", dialect: dialect.MySQL, intType: "Int", stringType: "VarChar(191)"},
		{name: "sqlserver", env: "TEST_MSSQL_URL", dialect: dialect.SQLServer, intType: "Int", stringType: "NVarChar(191)"},
	}

	for _, tt := range servers {
		t.Run(tt.name, func(t *testing.T) {
			url := os.Getenv(tt.env)
			if url == "" {
				t.Skipf("%s not set", tt.env)
			}
			ctx := context.Background()

			desired, d, err := snapshot.Read(strings.NewReader(shopSnapshot(tt.dialect, tt.intType, tt.stringType)), "")
			require.NoError(t, err)
			require.Equal(t, tt.dialect, d)

			require.NoError(t, schemaplan.ValidateOnShadow(ctx, url, desired, nil))

			conn, err := schemaplan.Connect(ctx, url)
			require.NoError(t, err)
			defer func() { _ = conn.Close(ctx) }()
			assert.Equal(t, tt.dialect, conn.Dialect())

			_, err = schemaplan.Describe(ctx, conn, nil)
			require.NoError(t, err)
		})
	}
}

func TestIntegrationConnectionFailure(t *testing.T) {
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := schemaplan.Connect(ctx, url)
	require.Error(t, err)
	var connErr *schemaplan.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}
