package changelog

import "time"

// Status classifies one identity key across the two versions.
type Status string

const (
	StatusNew      Status = "new address"
	StatusDeleted  Status = "deleted"
	StatusChanged  Status = "address names changed"
	StatusNoChange Status = "no change"
)

// Version names one of the two compared datasets.
type Version string

const (
	VersionOld Version = "old"
	VersionNew Version = "new"
)

// Key is the identity of a row across versions.
type Key struct {
	GUID       string
	Current    string
	PostalCode string
}

// Row is a disassembled input row: its identity and its content string.
type Row struct {
	Key
	Content string
}

// Entry is one change log line. Prev is empty for new addresses and Curr for deleted ones.
type Entry struct {
	Key
	Prev   string
	Curr   string
	Status Status
}

// PrefixStats counts the work done for one shard prefix.
type PrefixStats struct {
	Prefix    string `json:"prefix"`
	Old       int64  `json:"old"`
	New       int64  `json:"new"`
	Added     int64  `json:"added"`
	Deleted   int64  `json:"deleted"`
	Changed   int64  `json:"changed"`
	Unchanged int64  `json:"unchanged"`
}

// Entries is the number of change log lines produced for the prefix.
func (p PrefixStats) Entries() int64 {
	return p.Added + p.Deleted + p.Changed
}

// Summary describes a completed run.
type Summary struct {
	RunID     string                   `json:"run_id"`
	RowsOld   int64                    `json:"rows_old"`
	RowsNew   int64                    `json:"rows_new"`
	ChunksOld int                      `json:"chunks_old"`
	ChunksNew int                      `json:"chunks_new"`
	Entries   map[Status]int64         `json:"entries"`
	Prefixes  [PrefixCount]PrefixStats `json:"prefixes"`
	Duration  time.Duration            `json:"duration"`
}

// Total is the number of change log lines written.
func (s *Summary) Total() int64 {
	var n int64
	for _, c := range s.Entries {
		n += c
	}
	return n
}
