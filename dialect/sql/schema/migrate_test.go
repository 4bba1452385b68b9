package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/veloxdb/velox/dialect"
	"github.com/veloxdb/velox/dialect/sql"
	"github.com/veloxdb/velox/schema/field"
)

var errMockExec = errors.New("mock exec failure")

var (
	groupsColumns = []*Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
	}
	groupsTable = &Table{
		Name:       "groups",
		Columns:    groupsColumns,
		PrimaryKey: []*Column{groupsColumns[0]},
		Indexes: []*Index{
			{Name: "group_name", Columns: []*Column{groupsColumns[1]}},
		},
	}
	usersColumns = []*Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Nullable: true},
	}
	usersTable = &Table{
		Name:       "users",
		Columns:    usersColumns,
		PrimaryKey: []*Column{usersColumns[0]},
	}
	userGroupsColumns = []*Column{
		{Name: "user_id", Type: field.TypeInt},
		{Name: "group_id", Type: field.TypeInt},
	}
	userGroupsTable = &Table{
		Name:       "user_groups",
		Columns:    userGroupsColumns,
		PrimaryKey: userGroupsColumns,
		ForeignKeys: []*ForeignKey{
			{
				Symbol:     "user_groups_user_id",
				Columns:    []*Column{userGroupsColumns[0]},
				RefTable:   usersTable,
				RefColumns: []*Column{usersColumns[0]},
				OnDelete:   Cascade,
			},
			{
				Symbol:     "user_groups_group_id",
				Columns:    []*Column{userGroupsColumns[1]},
				RefTable:   groupsTable,
				RefColumns: []*Column{groupsColumns[0]},
				OnDelete:   Cascade,
			},
		},
	}
)

func openMock(t *testing.T) (*sql.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mk, err := sqlmock.New()
	require.NoError(t, err)
	return sql.OpenDB(dialect.Postgres, db), mk
}

func TestNewMigrateRejectsNilDriver(t *testing.T) {
	_, err := NewMigrate(nil)
	require.Error(t, err)
}

func TestCreateEmitsIdempotentDDLForEachTable(t *testing.T) {
	drv, mk := openMock(t)
	mk.ExpectExec(`CREATE TABLE IF NOT EXISTS "groups".*`).WillReturnResult(sqlmock.NewResult(0, 0))
	mk.ExpectExec(`CREATE INDEX IF NOT EXISTS "group_name" ON "groups".*`).WillReturnResult(sqlmock.NewResult(0, 0))
	mk.ExpectExec(`CREATE TABLE IF NOT EXISTS "users".*`).WillReturnResult(sqlmock.NewResult(0, 0))
	mk.ExpectExec(`CREATE TABLE IF NOT EXISTS "user_groups".*FOREIGN KEY.*`).WillReturnResult(sqlmock.NewResult(0, 0))

	m, err := NewMigrate(drv)
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background(), groupsTable, usersTable, userGroupsTable))
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestCreateHonoursSchemaName(t *testing.T) {
	drv, mk := openMock(t)
	mk.ExpectExec(`CREATE TABLE IF NOT EXISTS "tenant_a"\."users".*`).WillReturnResult(sqlmock.NewResult(0, 0))

	m, err := NewMigrate(drv, WithSchemaName("tenant_a"))
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background(), usersTable))
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestCreatePropagatesExecError(t *testing.T) {
	drv, mk := openMock(t)
	mk.ExpectExec(`CREATE TABLE.*`).WillReturnError(errMockExec)

	m, err := NewMigrate(drv)
	require.NoError(t, err)
	err = m.Create(context.Background(), usersTable)
	require.Error(t, err)
}

func TestWithGlobalUniqueIDSetsFlag(t *testing.T) {
	drv, _ := openMock(t)
	m, err := NewMigrate(drv, WithGlobalUniqueID(true))
	require.NoError(t, err)
	require.True(t, m.globalUnique)
}

func TestCreateEmitsLiteralAndRawDefaults(t *testing.T) {
	drv, mk := openMock(t)
	table := &Table{
		Name: "accounts",
		Columns: []*Column{
			{Name: "id", Type: field.TypeInt, Increment: true},
			{Name: "tier", Type: field.TypeString, Default: "free"},
			{Name: "created_at", Type: field.TypeTime, Default: RawExpr("now()")},
		},
		PrimaryKey: []*Column{{Name: "id"}},
	}
	mk.ExpectExec(`CREATE TABLE IF NOT EXISTS "accounts".*"tier".*DEFAULT 'free'.*"created_at".*DEFAULT now\(\).*`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	m, err := NewMigrate(drv)
	require.NoError(t, err)
	require.NoError(t, m.Create(context.Background(), table))
	require.NoError(t, mk.ExpectationsWereMet())
}

func TestColumnTypeMapsPortableTypesPerDialect(t *testing.T) {
	tests := []struct {
		dialectName string
		col         *Column
		want        string
	}{
		{dialect.Postgres, &Column{Type: field.TypeBool}, "boolean"},
		{dialect.SQLServer, &Column{Type: field.TypeBool}, "bit"},
		{dialect.MySQL, &Column{Type: field.TypeTime}, "datetime"},
		{dialect.Postgres, &Column{Type: field.TypeUUID}, "uuid"},
		{dialect.SQLite, &Column{Type: field.TypeUUID}, "char(36)"},
		{dialect.Postgres, &Column{Type: field.TypeJSON}, "jsonb"},
		{dialect.MySQL, &Column{Type: field.TypeJSON}, "json"},
		{dialect.Postgres, &Column{Type: field.TypeInt64}, "bigint"},
		{dialect.Postgres, &Column{Type: field.TypeString, Size: 64}, "varchar(64)"},
		{dialect.SQLServer, &Column{Type: field.TypeString}, "nvarchar(255)"},
		{dialect.Postgres, &Column{Type: field.TypeString, RawType: "citext"}, "citext"},
	}
	for _, tt := range tests {
		got := columnType(tt.dialectName, tt.col)
		require.Equal(t, tt.want, got)
	}
}

func TestValidateTableFlagsMissingPrimaryKey(t *testing.T) {
	result := ValidateTable(&Table{Name: "orphan", Columns: usersColumns})
	require.True(t, result.HasWarnings())
}

func TestValidateDiffFlagsDroppedColumnAsBreaking(t *testing.T) {
	current := []*Table{usersTable}
	desired := []*Table{{Name: "users", Columns: usersColumns[:1], PrimaryKey: usersTable.PrimaryKey}}
	result := ValidateDiff(current, desired)
	require.True(t, result.HasBreakingChanges())
}
