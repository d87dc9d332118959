package domain

import "strconv"

// CompareRevisions orders two revision tokens. Returns -1, 0 or 1 as a is
// older than, equal to or newer than b.
//
// When both tokens parse as integers they are compared numerically (Drive
// version counters, Unix timestamps). Otherwise they are compared as strings,
// which is correct for RFC 3339 timestamps of equal precision. An empty
// revision is older than any non-empty one.
func CompareRevisions(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}

	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}

	if a < b {
		return -1
	}
	return 1
}
