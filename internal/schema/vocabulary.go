package schema

import "sort"

// Vocabulary maps a dialect's underlying type names to target types.
// It is immutable after construction and safe to share between goroutines.
type Vocabulary struct {
	dialect string
	entries map[string]TargetType
}

// NewVocabulary copies entries into a new Vocabulary.
func NewVocabulary(dialect string, entries map[string]TargetType) *Vocabulary {
	m := make(map[string]TargetType, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &Vocabulary{dialect: dialect, entries: m}
}

// Dialect names the database family the vocabulary describes.
func (v *Vocabulary) Dialect() string {
	return v.dialect
}

// Lookup returns the target type for typeName. Matching is case-sensitive;
// ok is false for names the vocabulary does not know.
func (v *Vocabulary) Lookup(typeName string) (TargetType, bool) {
	t, ok := v.entries[typeName]
	return t, ok
}

// Names returns every known type name, sorted.
func (v *Vocabulary) Names() []string {
	names := make([]string, 0, len(v.entries))
	for k := range v.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var (
	postgresVocabulary = NewVocabulary("postgres", map[string]TargetType{
		"bpchar":      TargetString,
		"char":        TargetString,
		"varchar":     TargetString,
		"text":        TargetString,
		"citext":      TargetString,
		"uuid":        TargetString,
		"bytea":       TargetString,
		"inet":        TargetString,
		"name":        TargetString,
		"time":        TargetString,
		"timetz":      TargetString,
		"interval":    TargetString,
		"numeric":     TargetString, // arbitrary precision does not fit a JS number
		"int2":        TargetNumber,
		"int4":        TargetNumber,
		"int8":        TargetNumber,
		"float4":      TargetNumber,
		"float8":      TargetNumber,
		"money":       TargetNumber,
		"oid":         TargetNumber,
		"bool":        TargetBoolean,
		"json":        TargetObject,
		"jsonb":       TargetObject,
		"date":        TargetDate,
		"timestamp":   TargetDate,
		"timestamptz": TargetDate,
	})

	mysqlVocabulary = NewVocabulary("mysql", map[string]TargetType{
		"char":       TargetString,
		"varchar":    TargetString,
		"text":       TargetString,
		"tinytext":   TargetString,
		"mediumtext": TargetString,
		"longtext":   TargetString,
		"time":       TargetString,
		"geometry":   TargetString,
		"binary":     TargetString,
		"varbinary":  TargetString,
		"blob":       TargetString,
		"tinyblob":   TargetString,
		"mediumblob": TargetString,
		"longblob":   TargetString,
		"bit":        TargetString,
		"decimal":    TargetString,
		"numeric":    TargetString,
		"integer":    TargetNumber,
		"int":        TargetNumber,
		"smallint":   TargetNumber,
		"mediumint":  TargetNumber,
		"bigint":     TargetNumber,
		"double":     TargetNumber,
		"float":      TargetNumber,
		"year":       TargetNumber,
		"tinyint":    TargetBoolean,
		"json":       TargetObject,
		"date":       TargetDate,
		"datetime":   TargetDate,
		"timestamp":  TargetDate,
	})

	sqliteVocabulary = NewVocabulary("sqlite", map[string]TargetType{
		"text":      TargetString,
		"varchar":   TargetString,
		"char":      TargetString,
		"clob":      TargetString,
		"blob":      TargetString,
		"uuid":      TargetString,
		"numeric":   TargetString,
		"decimal":   TargetString,
		"integer":   TargetNumber,
		"int":       TargetNumber,
		"bigint":    TargetNumber,
		"smallint":  TargetNumber,
		"real":      TargetNumber,
		"double":    TargetNumber,
		"float":     TargetNumber,
		"boolean":   TargetBoolean,
		"bool":      TargetBoolean,
		"json":      TargetObject,
		"date":      TargetDate,
		"datetime":  TargetDate,
		"timestamp": TargetDate,
	})
)

// PostgresVocabulary is the vocabulary for PostgreSQL udt names.
func PostgresVocabulary() *Vocabulary { return postgresVocabulary }

// MySQLVocabulary is the vocabulary for MySQL information_schema data types.
func MySQLVocabulary() *Vocabulary { return mysqlVocabulary }

// SQLiteVocabulary is the vocabulary for normalized SQLite declared types.
func SQLiteVocabulary() *Vocabulary { return sqliteVocabulary }
