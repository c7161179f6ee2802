package render

import (
	"strings"
	"time"
	"unicode"

	"github.com/koustreak/schemats/internal/database"
	"github.com/koustreak/schemats/internal/schema"
)

// TimestampMarker starts the banner line that carries the generation time.
// Comparisons between generated files skip that line.
const TimestampMarker = " * AUTO-GENERATED FILE @ "

const indent = "    "

// TypeScript renders the model as TypeScript declarations. Output is a pure
// function of the model and opts: enums are emitted sorted by name and
// tables follow model.TableOrder.
func TypeScript(model *schema.SchemaModel, opts Options) []byte {
	var b strings.Builder

	if opts.Header {
		writeHeader(&b, opts)
	}

	b.WriteString("export type " + schema.DateInputType + " = Date | string\n\n")

	for _, e := range model.Enums {
		writeEnum(&b, e)
	}
	if len(model.Enums) > 0 {
		b.WriteString("\n")
	}

	shapes := model.Shapes()
	for _, shape := range shapes {
		name := typeIdent(shape.Name)
		writeInterface(&b, name+"Row", shape.ReadFields())
		writeInterface(&b, name+"RowInput", shape.WriteFields())
	}

	b.WriteString("export interface Tables {\n")
	for i, shape := range shapes {
		if i > 0 {
			b.WriteString("\n")
		}
		name := typeIdent(shape.Name)
		b.WriteString(indent + propertyKey(shape.Name) + ": {\n")
		b.WriteString(indent + indent + "read: " + name + "Row\n")
		b.WriteString(indent + indent + "write: " + name + "RowInput\n")
		b.WriteString(indent + "}\n")
	}
	b.WriteString("}\n")

	return []byte(b.String())
}

func writeHeader(b *strings.Builder, opts Options) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	cmd := []string{"schemats", "generate", "-c", database.RedactDSN(opts.ConnString)}
	for _, t := range opts.Tables {
		cmd = append(cmd, "-t", t)
	}
	if opts.Schema != "" {
		cmd = append(cmd, "-s", opts.Schema)
	}

	b.WriteString("/**\n")
	b.WriteString(TimestampMarker + now().Format("2006-01-02 15:04:05") + " - DO NOT EDIT!\n")
	b.WriteString(" *\n")
	b.WriteString(" * This file was automatically generated by schemats\n")
	b.WriteString(" * $ " + strings.Join(cmd, " ") + "\n")
	b.WriteString(" *\n")
	b.WriteString(" */\n\n")
}

func writeEnum(b *strings.Builder, e schema.EnumDeclaration) {
	b.WriteString("export type " + e.TypeName + " = ")
	if len(e.Values) == 0 {
		b.WriteString("never;\n")
		return
	}
	for i, v := range e.Values {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(quote(v))
	}
	b.WriteString(";\n")
}

func writeInterface(b *strings.Builder, name string, fields []schema.ShapeField) {
	b.WriteString("export interface " + name + " {\n")
	for _, f := range fields {
		b.WriteString(indent + propertyKey(f.Name))
		if f.Optional {
			b.WriteString("?")
		}
		b.WriteString(": " + f.Type.String() + ";\n")
	}
	b.WriteString("}\n\n")
}

// quote renders s as a single-quoted TypeScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// propertyKey returns name unchanged when it is a valid identifier and
// quoted otherwise.
func propertyKey(name string) string {
	if isIdentifier(name) {
		return name
	}
	return quote(name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// typeIdent derives an interface name prefix from a table name:
// "second_table" -> "SecondTable". Characters that cannot appear in an
// identifier are dropped and a leading digit gets an underscore.
func typeIdent(table string) string {
	p := strings.Map(func(r rune) rune {
		if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, schema.PascalCase(table))

	if p == "" || unicode.IsDigit([]rune(p)[0]) {
		return "_" + p
	}
	return p
}
