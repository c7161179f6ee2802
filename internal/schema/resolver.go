package schema

import (
	"strings"

	"github.com/koustreak/schemats/internal/errs"
)

// ArrayMarker prefixes the udt name of a one-dimensional array type
// (Postgres names int4[] as "_int4").
const ArrayMarker = "_"

// Resolver turns column metadata into target types using one vocabulary.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	vocab *Vocabulary
}

// NewResolver returns a Resolver over vocab. A nil vocab selects the
// Postgres vocabulary.
func NewResolver(vocab *Vocabulary) *Resolver {
	if vocab == nil {
		vocab = PostgresVocabulary()
	}
	return &Resolver{vocab: vocab}
}

// Vocabulary returns the vocabulary the resolver maps through.
func (r *Resolver) Vocabulary() *Vocabulary {
	return r.vocab
}

// Resolve computes the read and write types of one column. It never fails:
// a type that is neither an enum nor in the vocabulary becomes `any`.
//
// Only one array level is understood. "__int4" strips a single marker and
// resolves "_int4" as a base name, which is unknown, giving Array<any>.
func (r *Resolver) Resolve(col ColumnMetadata, enums *EnumRegistry) ResolvedColumnType {
	base, isArray := splitArray(col.UnderlyingType)

	elem := r.resolveBase(base, enums)
	elem.Array = isArray

	read := elem
	read.Nullable = col.IsNullable

	write := read
	if elem.Kind == KindPrimitive && elem.Name == string(TargetDate) {
		write.DateInput = true
	}

	return ResolvedColumnType{
		ReadType:         read,
		WriteType:        write,
		OptionalForWrite: col.IsNullable || col.HasDefault,
	}
}

func (r *Resolver) resolveBase(name string, enums *EnumRegistry) TypeExpr {
	if enums.IsEnum(name) {
		return TypeExpr{Name: EnumTypeName(name), Kind: KindEnum}
	}
	if t, ok := r.vocab.Lookup(name); ok {
		return TypeExpr{Name: string(t), Kind: KindPrimitive}
	}
	return TypeExpr{Name: string(TargetAny), Kind: KindUnknown}
}

func splitArray(typeName string) (string, bool) {
	if len(typeName) > len(ArrayMarker) && strings.HasPrefix(typeName, ArrayMarker) {
		return typeName[len(ArrayMarker):], true
	}
	return typeName, false
}

// Synthesize resolves every column of a table, keeping the introspector's
// column order. An empty column list is valid and yields an empty shape
// plus a warning. A column without a name or type is a broken introspection
// contract and fails the table.
func (r *Resolver) Synthesize(table string, columns []ColumnMetadata, enums *EnumRegistry) (*TableShape, []Warning, error) {
	shape := &TableShape{Name: table, Fields: make([]Field, 0, len(columns))}

	if len(columns) == 0 {
		return shape, []Warning{{Table: table, Message: "table has no columns"}}, nil
	}

	for i, col := range columns {
		if col.Name == "" {
			return nil, nil, errs.Newf(errs.ErrKindMalformedMetadata,
				"table %q: column #%d has no name", table, i+1)
		}
		if col.UnderlyingType == "" {
			return nil, nil, errs.Newf(errs.ErrKindMalformedMetadata,
				"table %q: column %q has no underlying type", table, col.Name)
		}

		shape.Fields = append(shape.Fields, Field{
			Name:               col.Name,
			UnderlyingType:     col.UnderlyingType,
			ResolvedColumnType: r.Resolve(col, enums),
		})
	}
	return shape, nil, nil
}

// AggregateInput is everything the aggregator needs, already fetched.
type AggregateInput struct {
	Schema  string
	Tables  []string                    // output order
	Columns map[string][]ColumnMetadata // keyed by table name
	Enums   map[string][]string         // enum name -> literals, any order
}

// Aggregate synthesizes every table of in.Tables and the enum declarations.
// It is pure: identical input always yields an identical model.
//
// A table listed twice is synthesized once, at its first position.
func (r *Resolver) Aggregate(in AggregateInput) (*SchemaModel, error) {
	enums := NewEnumRegistry(in.Enums)
	order := uniqueOrdered(in.Tables)

	model := &SchemaModel{
		Schema:     in.Schema,
		Enums:      enums.Declarations(),
		Tables:     make(map[string]*TableShape, len(order)),
		TableOrder: order,
	}

	for _, table := range order {
		shape, warnings, err := r.Synthesize(table, in.Columns[table], enums)
		if err != nil {
			return nil, err
		}
		model.Tables[table] = shape
		model.Warnings = append(model.Warnings, warnings...)
	}
	return model, nil
}

func uniqueOrdered(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
