package storage

import "strings"

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func firstLine(stmt string) string {
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
