package changelog

import (
	"strings"

	"gar-builder/core/faults"
)

// Prefixes lists the shard prefixes in merge order.
const Prefixes = "0123456789abcdef"

// PrefixCount is the number of shards per dataset.
const PrefixCount = len(Prefixes)

// PrefixOf returns the shard index of a GUID: its lower-cased first hex digit.
// A GUID that does not start with a hex digit cannot be sharded and is a structural violation.
func PrefixOf(guid string) (int, error) {
	if guid == "" {
		return 0, faults.Structural("shard_prefix", "empty guid")
	}
	c := guid[0]
	if 'A' <= c && c <= 'F' {
		c += 'a' - 'A'
	}
	i := strings.IndexByte(Prefixes, c)
	if i < 0 {
		return 0, faults.Structural("shard_prefix", "guid %q does not start with a hex digit", guid)
	}
	return i, nil
}
