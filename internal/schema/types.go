package schema

import "fmt"

// ColumnMetadata describes a single physical column as reported by an
// introspector. Nullability and default presence are already booleans.
type ColumnMetadata struct {
	Name           string `json:"name" yaml:"name"`
	UnderlyingType string `json:"underlying_type" yaml:"underlying_type"` // udt name: int4, _varchar, jsonb, a user enum, ...
	IsNullable     bool   `json:"is_nullable" yaml:"is_nullable"`
	HasDefault     bool   `json:"has_default" yaml:"has_default"`
}

// TargetType is the closed set of TypeScript base types a database type can map to.
type TargetType string

const (
	TargetString  TargetType = "string"
	TargetNumber  TargetType = "number"
	TargetBoolean TargetType = "boolean"
	TargetObject  TargetType = "Object"
	TargetDate    TargetType = "Date"
	TargetAny     TargetType = "any"
)

// DateInputType is the name of the generated union accepted on write for
// date/time columns. It is declared as `Date | string` in the output.
const DateInputType = "DateInput"

// TypeKind says where a TypeExpr's base name came from.
type TypeKind int

const (
	KindPrimitive TypeKind = iota // found in the vocabulary
	KindEnum                      // generated enum reference
	KindUnknown                   // unrecognized, degraded to any
)

func (k TypeKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k TypeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TypeExpr is a target type expression. Arrays are one level deep only.
type TypeExpr struct {
	Name      string   `json:"name" yaml:"name"`
	Kind      TypeKind `json:"kind" yaml:"kind"`
	Array     bool     `json:"array,omitempty" yaml:"array,omitempty"`
	Nullable  bool     `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	DateInput bool     `json:"date_input,omitempty" yaml:"date_input,omitempty"`
}

// String renders the expression as TypeScript, e.g. `Array<number> | null`.
func (t TypeExpr) String() string {
	elem := t.Name
	if t.DateInput {
		elem = t.Name + " | " + DateInputType
	}
	if t.Array {
		elem = "Array<" + elem + ">"
	}
	if t.Nullable {
		elem += " | null"
	}
	return elem
}

// ResolvedColumnType is the outcome of resolving one column.
type ResolvedColumnType struct {
	ReadType         TypeExpr `json:"read" yaml:"read"`
	WriteType        TypeExpr `json:"write" yaml:"write"`
	OptionalForWrite bool     `json:"optional_for_write" yaml:"optional_for_write"`
}

// Field is one resolved column of a table shape.
type Field struct {
	Name               string `json:"name" yaml:"name"`
	UnderlyingType     string `json:"underlying_type" yaml:"underlying_type"`
	ResolvedColumnType `yaml:",inline"`
}

// ShapeField is a field as it appears in one of the two interfaces.
type ShapeField struct {
	Name     string
	Type     TypeExpr
	Optional bool
}

// TableShape holds the resolved fields of one table, in column order.
type TableShape struct {
	Name   string  `json:"name" yaml:"name"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// ReadFields returns the row interface: every column present.
func (s *TableShape) ReadFields() []ShapeField {
	out := make([]ShapeField, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = ShapeField{Name: f.Name, Type: f.ReadType}
	}
	return out
}

// WriteFields returns the input interface: same keys, optional where the
// database can supply a value.
func (s *TableShape) WriteFields() []ShapeField {
	out := make([]ShapeField, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = ShapeField{Name: f.Name, Type: f.WriteType, Optional: f.OptionalForWrite}
	}
	return out
}

// EnumDeclaration is one generated enum type.
type EnumDeclaration struct {
	Name     string   `json:"name" yaml:"name"`           // database type name
	TypeName string   `json:"type_name" yaml:"type_name"` // generated identifier
	Values   []string `json:"values" yaml:"values"`       // sorted, deduplicated
}

// Warning is a non-fatal condition found during synthesis.
type Warning struct {
	Table   string `json:"table" yaml:"table"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Table, w.Message)
}

// SchemaModel is the complete synthesized schema handed to renderers.
type SchemaModel struct {
	Schema     string                 `json:"schema" yaml:"schema"`
	Enums      []EnumDeclaration      `json:"enums" yaml:"enums"`
	Tables     map[string]*TableShape `json:"tables" yaml:"tables"`
	TableOrder []string               `json:"table_order" yaml:"table_order"`
	Warnings   []Warning              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Shapes returns the table shapes in TableOrder.
func (m *SchemaModel) Shapes() []*TableShape {
	out := make([]*TableShape, 0, len(m.TableOrder))
	for _, name := range m.TableOrder {
		if s, ok := m.Tables[name]; ok {
			out = append(out, s)
		}
	}
	return out
}
