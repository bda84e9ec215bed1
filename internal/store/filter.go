package store

// whereClause renders the shared filter predicate for one record
// table: child scoping, inclusive time window, and an optional
// sub-type match. typeCol is "" for tables without a sub-type column.
func whereClause(f RecordFilter, timeCol, typeCol string) (string, []any) {
	clause := " WHERE child_id = ?"
	args := []any{f.ChildID}

	if !f.Since.IsZero() {
		clause += " AND " + timeCol + " >= ?"
		args = append(args, fmtTime(f.Since))
	}
	if !f.Until.IsZero() {
		clause += " AND " + timeCol + " <= ?"
		args = append(args, fmtTime(f.Until))
	}
	if typeCol != "" && f.Type != "" {
		clause += " AND " + typeCol + " = ?"
		args = append(args, f.Type)
	}
	return clause, args
}
