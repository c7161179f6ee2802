package cache

import (
	"strings"

	"github.com/google/uuid"
)

// keySpace namespaces the name-based UUIDs used as cache keys.
var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/koustreak/schemats/cache"))

// Key identifies one rendering of a schema. Repeated tables collapse to
// their first occurrence, but order is kept: it decides the order of the
// generated interfaces. source distinguishes databases, e.g. a redacted
// connection string.
func Key(source, schemaName, format string, tables []string) string {
	seen := make(map[string]struct{}, len(tables))
	parts := make([]string, 0, 3+len(tables))
	parts = append(parts, source, schemaName, format)
	for _, t := range tables {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		parts = append(parts, t)
	}

	// Identifiers cannot contain NUL, so the joined name is unambiguous.
	name := strings.Join(parts, "\x00")
	return format + ":" + uuid.NewSHA1(keySpace, []byte(name)).String()
}
