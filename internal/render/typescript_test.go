package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/schema"
)

func col(name, udt string, nullable, hasDefault bool) schema.ColumnMetadata {
	return schema.ColumnMetadata{Name: name, UnderlyingType: udt, IsNullable: nullable, HasDefault: hasDefault}
}

func osmModel(t *testing.T) *schema.SchemaModel {
	t.Helper()
	model, err := schema.NewResolver(nil).Aggregate(schema.AggregateInput{
		Schema: "public",
		Tables: []string{"users", "second_table"},
		Columns: map[string][]schema.ColumnMetadata{
			"users": {
				col("email", "varchar", false, false),
				col("id", "int4", false, true),
				col("creation_time", "timestamp", false, false),
				col("home_lat", "float8", true, false),
				col("status", "user_status", false, true),
				col("description_format", "format", false, true),
				col("jsonb_col", "jsonb", true, false),
				col("timestamptz_array_col", "_timestamptz", true, false),
				col("unsupported_path_type", "path", true, false),
			},
			"second_table": {col("email", "varchar", false, false)},
		},
		Enums: map[string][]string{
			"user_status": {"pending", "active", "confirmed"},
			"format":      {"text", "html", "markdown"},
		},
	})
	require.NoError(t, err)
	return model
}

const osmTS = `export type DateInput = Date | string

export type FormatEnum = 'html' | 'markdown' | 'text';
export type UserStatusEnum = 'active' | 'confirmed' | 'pending';

export interface UsersRow {
    email: string;
    id: number;
    creation_time: Date;
    home_lat: number | null;
    status: UserStatusEnum;
    description_format: FormatEnum;
    jsonb_col: Object | null;
    timestamptz_array_col: Array<Date> | null;
    unsupported_path_type: any | null;
}

export interface UsersRowInput {
    email: string;
    id?: number;
    creation_time: Date | DateInput;
    home_lat?: number | null;
    status?: UserStatusEnum;
    description_format?: FormatEnum;
    jsonb_col?: Object | null;
    timestamptz_array_col?: Array<Date | DateInput> | null;
    unsupported_path_type?: any | null;
}

export interface SecondTableRow {
    email: string;
}

export interface SecondTableRowInput {
    email: string;
}

export interface Tables {
    users: {
        read: UsersRow
        write: UsersRowInput
    }

    second_table: {
        read: SecondTableRow
        write: SecondTableRowInput
    }
}
`

func TestTypeScript_Golden(t *testing.T) {
	got := TypeScript(osmModel(t), Options{})
	assert.Equal(t, osmTS, string(got))
}

func TestTypeScript_Deterministic(t *testing.T) {
	first := TypeScript(osmModel(t), Options{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TypeScript(osmModel(t), Options{}))
	}
}

func TestTypeScript_Header(t *testing.T) {
	opts := Options{
		Header:     true,
		ConnString: "postgres://admin:hunter2@db:5432/osm",
		Tables:     []string{"users", "second_table"},
		Schema:     "public",
		Now:        func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) },
	}

	got := string(TypeScript(osmModel(t), opts))

	assert.True(t, strings.HasPrefix(got, "/**\n * AUTO-GENERATED FILE @ 2026-03-04 05:06:07 - DO NOT EDIT!\n"))
	assert.Contains(t, got, " * $ schemats generate -c postgres://username:password@db:5432/osm -t users -t second_table -s public\n")
	assert.NotContains(t, got, "hunter2")
	assert.True(t, strings.HasSuffix(got, osmTS))
}

func TestTypeScript_EmptyModel(t *testing.T) {
	got := TypeScript(&schema.SchemaModel{Schema: "public"}, Options{})
	assert.Equal(t, "export type DateInput = Date | string\n\nexport interface Tables {\n}\n", string(got))
}

func TestTypeScript_QuotesAwkwardNames(t *testing.T) {
	model, err := schema.NewResolver(nil).Aggregate(schema.AggregateInput{
		Schema:  "public",
		Tables:  []string{"order-items", "2fa"},
		Columns: map[string][]schema.ColumnMetadata{"order-items": {col("unit price", "numeric", false, false)}, "2fa": {col("code", "mood", false, false)}},
		Enums:   map[string][]string{"mood": {"it's", `back\slash`, "ok"}},
	})
	require.NoError(t, err)

	got := string(TypeScript(model, Options{}))

	assert.Contains(t, got, `export type MoodEnum = 'back\\slash' | 'it\'s' | 'ok';`)
	assert.Contains(t, got, "export interface OrderItemsRow {\n    'unit price': string;\n}")
	assert.Contains(t, got, "export interface _2faRow {")
	assert.Contains(t, got, "    'order-items': {\n        read: OrderItemsRow\n")
	assert.Contains(t, got, "    '2fa': {\n")
}

func TestTypeScript_EmptyEnum(t *testing.T) {
	model := &schema.SchemaModel{Enums: []schema.EnumDeclaration{{Name: "nothing", TypeName: "NothingEnum", Values: []string{}}}}
	assert.Contains(t, string(TypeScript(model, Options{})), "export type NothingEnum = never;\n")
}

func TestIsIdentifier(t *testing.T) {
	for _, ok := range []string{"id", "_private", "$ref", "camelCase", "col2", "naïve"} {
		assert.True(t, isIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "2col", "with space", "dash-ed", "dot.ted"} {
		assert.False(t, isIdentifier(bad), bad)
	}
}
