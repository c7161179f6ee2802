package introspect

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/schema"
)

func TestPostgres_DefaultSchema(t *testing.T) {
	db, _ := newMock(t)
	name, err := NewPostgres(db, 0).DefaultSchema(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "public", name)
}

func TestPostgres_ListTables(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("app").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("accounts").AddRow("users"))

	tables, err := NewPostgres(db, 0).ListTables(context.Background(), "app")
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "users"}, tables)
}

func TestPostgres_FetchColumns(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT column_name")).
		WithArgs("users", "public").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "udt_name", "is_nullable", "has_default"}).
			AddRow("id", "int4", false, true).
			AddRow("tags", "_text", true, false).
			AddRow("status", "user_status", false, true))

	cols, err := NewPostgres(db, 0).FetchColumns(context.Background(), "users", "public")
	require.NoError(t, err)
	assert.Equal(t, []schema.ColumnMetadata{
		{Name: "id", UnderlyingType: "int4", IsNullable: false, HasDefault: true},
		{Name: "tags", UnderlyingType: "_text", IsNullable: true, HasDefault: false},
		{Name: "status", UnderlyingType: "user_status", IsNullable: false, HasDefault: true},
	}, cols)
}

func TestPostgres_FetchColumns_NoColumns(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT column_name").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "udt_name", "is_nullable", "has_default"}))

	cols, err := NewPostgres(db, 0).FetchColumns(context.Background(), "empty_table", "public")
	require.NoError(t, err)
	assert.NotNil(t, cols)
	assert.Empty(t, cols)
}

func TestPostgres_FetchColumns_QueryError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT column_name").WillReturnError(errors.New("relation does not exist"))

	_, err := NewPostgres(db, 0).FetchColumns(context.Background(), "users", "public")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch columns")
}

func TestPostgres_FetchEnums(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM pg_type t")).
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).
			AddRow("format", "html").
			AddRow("format", "markdown").
			AddRow("user_status", "active"))

	enums, err := NewPostgres(db, 0).FetchEnums(context.Background(), "public")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"format":      {"html", "markdown"},
		"user_status": {"active"},
	}, enums)
}

func TestPostgres_BuildsModel(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM pg_type t").
		WithArgs("public").
		WillReturnRows(sqlmock.NewRows([]string{"name", "value"}).AddRow("mood", "sad").AddRow("mood", "happy"))
	mock.ExpectQuery("SELECT column_name").
		WithArgs("people", "public").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "udt_name", "is_nullable", "has_default"}).
			AddRow("name", "text", false, false).
			AddRow("mood", "mood", true, false))

	model, err := schema.Build(context.Background(), NewPostgres(db, 0), schema.Request{Tables: []string{"people"}})
	require.NoError(t, err)

	people := model.Tables["people"]
	require.NotNil(t, people)
	assert.Equal(t, "MoodEnum | null", people.Fields[1].ReadType.String())
	assert.Equal(t, []string{"happy", "sad"}, model.Enums[0].Values)
}
