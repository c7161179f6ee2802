package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/schemats/internal/errs"
)

func col(name, udt string, nullable, hasDefault bool) ColumnMetadata {
	return ColumnMetadata{Name: name, UnderlyingType: udt, IsNullable: nullable, HasDefault: hasDefault}
}

func TestResolve_PostgresVocabulary(t *testing.T) {
	tests := []struct {
		udt      string
		expected string
	}{
		{"bpchar", "string"},
		{"char", "string"},
		{"varchar", "string"},
		{"text", "string"},
		{"citext", "string"},
		{"uuid", "string"},
		{"bytea", "string"},
		{"inet", "string"},
		{"name", "string"},
		{"time", "string"},
		{"timetz", "string"},
		{"interval", "string"},
		{"numeric", "string"},
		{"int2", "number"},
		{"int4", "number"},
		{"int8", "number"},
		{"float4", "number"},
		{"float8", "number"},
		{"money", "number"},
		{"oid", "number"},
		{"bool", "boolean"},
		{"json", "Object"},
		{"jsonb", "Object"},
		{"date", "Date"},
		{"timestamp", "Date"},
		{"timestamptz", "Date"},
	}

	r := NewResolver(PostgresVocabulary())
	for _, tt := range tests {
		t.Run(tt.udt, func(t *testing.T) {
			got := r.Resolve(col("c", tt.udt, false, false), nil)
			assert.Equal(t, tt.expected, got.ReadType.String())
			assert.Equal(t, KindPrimitive, got.ReadType.Kind)
			assert.False(t, got.OptionalForWrite)
		})
	}
}

func TestResolve_EveryVocabularyEntryIsExact(t *testing.T) {
	for _, vocab := range []*Vocabulary{PostgresVocabulary(), MySQLVocabulary(), SQLiteVocabulary()} {
		r := NewResolver(vocab)
		for _, name := range vocab.Names() {
			want, ok := vocab.Lookup(name)
			require.True(t, ok)

			got := r.Resolve(col("c", name, false, false), nil)
			assert.Equal(t, string(want), got.ReadType.Name, "%s/%s", vocab.Dialect(), name)
			assert.False(t, got.ReadType.Nullable)
			assert.False(t, got.OptionalForWrite)
		}
	}
}

func TestResolve_Arrays(t *testing.T) {
	tests := []struct {
		udt      string
		expected string
	}{
		{"_int2", "Array<number>"},
		{"_int4", "Array<number>"},
		{"_int8", "Array<number>"},
		{"_float4", "Array<number>"},
		{"_float8", "Array<number>"},
		{"_numeric", "Array<string>"},
		{"_money", "Array<number>"},
		{"_bool", "Array<boolean>"},
		{"_varchar", "Array<string>"},
		{"_text", "Array<string>"},
		{"_citext", "Array<string>"},
		{"_uuid", "Array<string>"},
		{"_bytea", "Array<string>"},
		{"_json", "Array<Object>"},
		{"_jsonb", "Array<Object>"},
		{"_timestamptz", "Array<Date>"},
	}

	r := NewResolver(nil)
	enums := NewEnumRegistry(map[string][]string{"CustomType": {"a"}})
	for _, tt := range tests {
		t.Run(tt.udt, func(t *testing.T) {
			got := r.Resolve(col("c", tt.udt, false, false), enums)
			assert.Equal(t, tt.expected, got.ReadType.String())
			assert.True(t, got.ReadType.Array)
		})
	}
}

func TestResolve_ArrayWrapsScalarResolution(t *testing.T) {
	r := NewResolver(nil)
	enums := NewEnumRegistry(map[string][]string{"mood": {"happy", "sad"}})
	names := append(PostgresVocabulary().Names(), "mood", "mystery_type")

	for _, name := range names {
		scalar := r.Resolve(col("c", name, false, false), enums)
		array := r.Resolve(col("c", ArrayMarker+name, false, false), enums)
		assert.Equal(t, "Array<"+scalar.ReadType.String()+">", array.ReadType.String(), name)
	}
}

func TestResolve_NestedArrayIsNotModelled(t *testing.T) {
	got := NewResolver(nil).Resolve(col("c", "__int4", false, false), nil)

	assert.Equal(t, "Array<any>", got.ReadType.String())
	assert.Equal(t, KindUnknown, got.ReadType.Kind)
}

func TestResolve_LoneMarkerIsNotAnArray(t *testing.T) {
	got := NewResolver(nil).Resolve(col("c", "_", false, false), nil)

	assert.False(t, got.ReadType.Array)
	assert.Equal(t, "any", got.ReadType.String())
}

func TestResolve_EnumTakesPrecedence(t *testing.T) {
	// "text" is also a vocabulary entry; the registry wins.
	enums := NewEnumRegistry(map[string][]string{"text": {"x"}, "CustomType": {"y"}})
	r := NewResolver(nil)

	got := r.Resolve(col("c", "text", false, false), enums)
	assert.Equal(t, "TextEnum", got.ReadType.String())
	assert.Equal(t, KindEnum, got.ReadType.Kind)

	got = r.Resolve(col("c", "CustomType", false, false), enums)
	assert.Equal(t, "CustomTypeEnum", got.ReadType.String())

	got = r.Resolve(col("c", "_CustomType", true, false), enums)
	assert.Equal(t, "Array<CustomTypeEnum> | null", got.ReadType.String())
}

func TestResolve_UnknownEnumFallsThroughToVocabulary(t *testing.T) {
	enums := NewEnumRegistry(map[string][]string{"other": {"a"}})

	got := NewResolver(nil).Resolve(col("c", "int4", false, false), enums)
	assert.Equal(t, "number", got.ReadType.String())
}

func TestResolve_Nullability(t *testing.T) {
	r := NewResolver(nil)
	for _, name := range append(PostgresVocabulary().Names(), "_int4", "unknown_thing") {
		nullable := r.Resolve(col("c", name, true, false), nil)
		required := r.Resolve(col("c", name, false, false), nil)

		assert.Contains(t, nullable.ReadType.String(), "| null", name)
		assert.NotContains(t, required.ReadType.String(), "null", name)
	}
}

func TestResolve_Optionality(t *testing.T) {
	tests := []struct {
		nullable, hasDefault, optional bool
	}{
		{false, false, false},
		{true, false, true},
		{false, true, true},
		{true, true, true},
	}

	r := NewResolver(nil)
	for _, tt := range tests {
		got := r.Resolve(col("c", "text", tt.nullable, tt.hasDefault), nil)
		assert.Equal(t, tt.optional, got.OptionalForWrite, "nullable=%v default=%v", tt.nullable, tt.hasDefault)
	}
}

func TestResolve_WriteTypeDiffersOnlyForDates(t *testing.T) {
	r := NewResolver(nil)
	for _, name := range PostgresVocabulary().Names() {
		got := r.Resolve(col("c", name, true, false), nil)
		target, _ := PostgresVocabulary().Lookup(name)
		if target == TargetDate {
			assert.Equal(t, "Date | DateInput | null", got.WriteType.String(), name)
			continue
		}
		assert.Equal(t, got.ReadType, got.WriteType, name)
	}

	arr := r.Resolve(col("c", "_timestamptz", true, false), nil)
	assert.Equal(t, "Array<Date> | null", arr.ReadType.String())
	assert.Equal(t, "Array<Date | DateInput> | null", arr.WriteType.String())
}

func TestResolve_Examples(t *testing.T) {
	r := NewResolver(nil)

	t.Run("enum column with default", func(t *testing.T) {
		enums := NewEnumRegistry(map[string][]string{"userstatus": {"pending", "active"}})
		got := r.Resolve(col("status", "userstatus", false, true), enums)

		assert.Equal(t, "UserstatusEnum", got.ReadType.String())
		assert.True(t, got.OptionalForWrite)
		assert.Equal(t, []string{"active", "pending"}, enums.Values("userstatus"))
	})

	t.Run("nullable int array", func(t *testing.T) {
		got := r.Resolve(col("ids", "_int4", true, false), nil)

		assert.Equal(t, "Array<number> | null", got.ReadType.String())
		assert.Equal(t, got.ReadType.String(), got.WriteType.String())
		assert.True(t, got.OptionalForWrite)
	})

	t.Run("required timestamptz", func(t *testing.T) {
		got := r.Resolve(col("created_at", "timestamptz", false, false), nil)

		assert.Equal(t, "Date", got.ReadType.String())
		assert.Equal(t, "Date | DateInput", got.WriteType.String())
		assert.False(t, got.OptionalForWrite)
	})

	t.Run("unknown type", func(t *testing.T) {
		got := r.Resolve(col("geom", "mystery_type", false, false), nil)

		assert.Equal(t, "any", got.ReadType.String())
		assert.Equal(t, KindUnknown, got.ReadType.Kind)
	})
}

func TestSynthesize_PreservesOrder(t *testing.T) {
	columns := []ColumnMetadata{
		col("zeta", "text", false, false),
		col("alpha", "int4", true, false),
		col("mid", "timestamptz", false, true),
	}

	shape, warnings, err := NewResolver(nil).Synthesize("t", columns, nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	read := shape.ReadFields()
	write := shape.WriteFields()
	require.Len(t, read, 3)
	require.Len(t, write, 3)

	for i, c := range columns {
		assert.Equal(t, c.Name, read[i].Name)
		assert.Equal(t, c.Name, write[i].Name)
		assert.False(t, read[i].Optional)
	}
	assert.False(t, write[0].Optional)
	assert.True(t, write[1].Optional)
	assert.True(t, write[2].Optional)
	assert.Equal(t, "Date | DateInput", write[2].Type.String())
}

func TestSynthesize_EmptyTable(t *testing.T) {
	shape, warnings, err := NewResolver(nil).Synthesize("empty_table", nil, nil)

	require.NoError(t, err)
	assert.Empty(t, shape.Fields)
	require.Len(t, warnings, 1)
	assert.Equal(t, "empty_table", warnings[0].Table)
}

func TestSynthesize_MalformedColumn(t *testing.T) {
	r := NewResolver(nil)

	_, _, err := r.Synthesize("users", []ColumnMetadata{col("id", "int4", false, false), col("", "text", false, false)}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsMalformedMetadata(err))
	assert.Contains(t, err.Error(), `"users"`)
	assert.Contains(t, err.Error(), "#2")

	_, _, err = r.Synthesize("users", []ColumnMetadata{col("email", "", false, false)}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsMalformedMetadata(err))
	assert.Contains(t, err.Error(), `"email"`)
}
