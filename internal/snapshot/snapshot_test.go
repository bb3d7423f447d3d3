package snapshot

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemaplan/internal/dialect"
	"github.com/tordrt/schemaplan/internal/differ"
	"github.com/tordrt/schemaplan/internal/schema"
)

const blog = `
dialect: postgres
enums:
  - name: Role
    values: [user, admin]
tables:
  - name: User
    columns:
      - name: id
        type: Integer
        autoincrement: true
      - name: role
        enum: Role
        default:
          expr: "'user'"
      - name: tags
        type: Text
        list: true
    primary_key:
      name: User_pkey
      columns:
        - name: id
  - name: Post
    columns:
      - name: id
        type: Integer
      - name: authorId
        type: Integer
        nullable: true
      - name: createdAt
        type: Timestamp(3)
        default:
          kind: now
    primary_key:
      columns:
        - name: id
    indexes:
      - name: Post_authorId_idx
        columns:
          - name: authorId
            desc: true
    foreign_keys:
      - name: Post_authorId_fkey
        columns: [authorId]
        references:
          table: User
          columns: [id]
        on_delete: SET NULL
`

func TestRead(t *testing.T) {
	s, d, err := Read(strings.NewReader(blog), "")
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, d)

	user, ok := s.FindTable("public", "User")
	require.True(t, ok)
	id, _ := user.Column("id")
	assert.True(t, id.AutoIncrement())
	assert.Equal(t, schema.FamilyInt, id.Family())
	assert.Equal(t, "integer", id.FullDataType())

	role, _ := user.Column("role")
	e, ok := role.Enum()
	require.True(t, ok)
	assert.Equal(t, []string{"user", "admin"}, e.Values())
	assert.Equal(t, "'user'", role.Default().Expr)

	tags, _ := user.Column("tags")
	assert.True(t, tags.IsList())

	post, ok := s.FindTable("public", "Post")
	require.True(t, ok)
	createdAt, _ := post.Column("createdAt")
	assert.Equal(t, schema.DefaultNow, createdAt.Default().Kind)
	assert.Equal(t, "Timestamp(3)", createdAt.Native().String())

	fks := post.ForeignKeys()
	require.Len(t, fks, 1)
	assert.Equal(t, schema.SetNull, fks[0].OnDelete())
	assert.Equal(t, "User", fks[0].ReferencedTable().Name())

	var idx schema.IndexWalker
	for _, i := range post.Indexes() {
		if !i.IsPrimaryKey() {
			idx = i
		}
	}
	assert.Equal(t, schema.Desc, idx.Columns()[0].SortOrder())
}

func TestRoundTrip(t *testing.T) {
	s, d, err := Read(strings.NewReader(blog), "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, s, d))

	again, d2, err := Read(&buf, "")
	require.NoError(t, err, buf.String())
	assert.Equal(t, d, d2)

	m, err := differ.Diff(s, again, differ.Options{Dialect: d})
	require.NoError(t, err)
	assert.Empty(t, m.Steps)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "unknown key",
			doc:  "tables:\n  - name: A\n    colums: []\n",
			want: "colums",
		},
		{
			name: "unknown enum",
			doc:  "tables:\n  - name: A\n    columns:\n      - name: x\n        enum: Nope\n",
			want: "unknown enum Nope",
		},
		{
			name: "untyped column",
			doc:  "tables:\n  - name: A\n    columns:\n      - name: x\n",
			want: "needs a type",
		},
		{
			name: "dangling foreign key",
			doc: "tables:\n  - name: A\n    columns:\n      - name: x\n        type: Int\n" +
				"    foreign_keys:\n      - columns: [x]\n        references:\n          table: B\n          columns: [id]\n",
			want: "unknown table B",
		},
		{
			name: "duplicate table",
			doc:  "tables:\n  - name: A\n    columns: []\n  - name: A\n    columns: []\n",
			want: "A",
		},
		{
			name: "unknown dialect",
			doc:  "dialect: oracle\n",
			want: "oracle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.doc), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEmptyDocument(t *testing.T) {
	s, d, err := Read(strings.NewReader(""), "")
	require.NoError(t, err)
	assert.Equal(t, dialect.Dialect(""), d)
	assert.True(t, s.IsEmpty())
}

func TestReadFallbackDialect(t *testing.T) {
	doc := "tables:\n  - name: A\n    columns:\n      - name: x\n        type: Integer\n"
	s, d, err := Read(strings.NewReader(doc), dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, dialect.Postgres, d)
	_, ok := s.FindTable("public", "A")
	assert.True(t, ok)

	_, d, err = Read(strings.NewReader("dialect: mysql\n"+doc), dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, dialect.MySQL, d)
}

func TestIsSnapshotPath(t *testing.T) {
	assert.True(t, IsSnapshotPath("schema.yaml"))
	assert.True(t, IsSnapshotPath("dir/Schema.YML"))
	assert.False(t, IsSnapshotPath("postgres://localhost/db"))
	assert.False(t, IsSnapshotPath("file:dev.db"))
}
