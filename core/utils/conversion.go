package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToInt64 converts a raw attribute value to int64.
// Empty or whitespace-only values yield def; anything else must parse.
func ToInt64(raw string, def int64) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return v, nil
}

// ToInt converts a raw attribute value to int. See ToInt64.
func ToInt(raw string, def int) (int, error) {
	v, err := ToInt64(raw, int64(def))
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// BoolFlag renders a bool as the registry's "1"/"0" flag.
func BoolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseIntSet parses a comma-separated list of integers ("0,1,2") into a set.
func ParseIntSet(list string) (map[int]struct{}, error) {
	set := make(map[int]struct{})
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in list %q", part, list)
		}
		set[v] = struct{}{}
	}
	return set, nil
}

// ParseList splits a comma-separated list and drops empty entries.
func ParseList(list string) []string {
	var out []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
