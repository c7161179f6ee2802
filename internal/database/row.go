package database

import "github.com/koustreak/schemats/internal/errs"

// ScanStrings reads a single-column result set of text values, such as a
// table listing. The returned slice is non-nil even for zero rows.
// ScanStrings always closes the Rows.
func ScanStrings(rows Rows) ([]string, error) {
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return out, nil
}
