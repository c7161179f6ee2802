package schema

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// EnumRegistry is the set of enum type names known for one schema run,
// with their literal values. A nil *EnumRegistry knows no enums.
type EnumRegistry struct {
	values map[string][]string
}

// NewEnumRegistry builds a registry from raw definitions. Each value list
// is sorted and deduplicated, so the registry is independent of the order
// the introspector returned rows in.
func NewEnumRegistry(defs map[string][]string) *EnumRegistry {
	r := &EnumRegistry{values: make(map[string][]string, len(defs))}
	for name, vals := range defs {
		r.values[name] = sortedUnique(vals)
	}
	return r
}

// IsEnum reports whether typeName was registered as an enum.
func (r *EnumRegistry) IsEnum(typeName string) bool {
	if r == nil {
		return false
	}
	_, ok := r.values[typeName]
	return ok
}

// Values returns the sorted literals of an enum, or nil.
func (r *EnumRegistry) Values(typeName string) []string {
	if r == nil {
		return nil
	}
	return r.values[typeName]
}

// Names returns the registered enum names in ascending order.
func (r *EnumRegistry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns one EnumDeclaration per enum, ordered by name.
func (r *EnumRegistry) Declarations() []EnumDeclaration {
	names := r.Names()
	out := make([]EnumDeclaration, 0, len(names))
	for _, name := range names {
		vals := make([]string, len(r.values[name]))
		copy(vals, r.values[name])
		out = append(out, EnumDeclaration{
			Name:     name,
			TypeName: EnumTypeName(name),
			Values:   vals,
		})
	}
	return out
}

// EnumTypeName derives the generated identifier for an enum:
// "format" -> "FormatEnum", "user_status" -> "UserStatusEnum".
func EnumTypeName(name string) string {
	return PascalCase(name) + "Enum"
}

// PascalCase upper-cases the first letter of every word, where words are
// separated by '_', '-', '.' or spaces. The rest of each word is kept as is.
func PascalCase(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	var sb strings.Builder
	for _, p := range parts {
		r, size := utf8.DecodeRuneInString(p)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(p[size:])
	}
	return sb.String()
}

func sortedUnique(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	j := 0
	for i, v := range out {
		if i > 0 && v == out[j-1] {
			continue
		}
		out[j] = v
		j++
	}
	return out[:j]
}
