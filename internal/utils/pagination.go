// Package utils holds small parsing helpers shared by the HTTP handlers:
// query integers, page bounds and numeric path ids.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as an int, returning def when s is empty or not a
// valid integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page reads a 1-based page number and a page size from raw query values.
// Missing or invalid values fall back to page 1 and def; the size is capped
// at max when max > 0.
func Page(pageRaw, sizeRaw string, def, max int) (page, size int) {
	page = AtoiDefault(pageRaw, 1)
	if page < 1 {
		page = 1
	}
	size = AtoiDefault(sizeRaw, def)
	if size < 1 {
		size = def
	}
	if max > 0 && size > max {
		size = max
	}
	return page, size
}

// TotalPages is ceil(total / size), and 0 for an empty result.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// ParseID parses a positive numeric id such as a path parameter.
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
