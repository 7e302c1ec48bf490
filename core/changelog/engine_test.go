package changelog

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"gar-builder/core/faults"
	"gar-builder/core/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLayout() Layout {
	return Layout{
		Comma:      '¬',
		GUID:       "guid",
		Current:    "current",
		PostalCode: "postalcode",
		Content:    []string{"city", "street"},
		Separator:  "|",
	}
}

type testRow struct {
	guid, current, postal, city, street string
}

func (r testRow) key() Key {
	return Key{GUID: r.guid, Current: r.current, PostalCode: r.postal}
}

func (r testRow) content() string {
	return r.city + "|" + r.street
}

// writeDataset writes rows in the flat format, with an id column the engine ignores.
func writeDataset(t *testing.T, dir, name string, rows []testRow) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '¬'
	require.NoError(t, cw.Write([]string{"id", "guid", "current", "postalcode", "street", "city"}))
	for i, r := range rows {
		require.NoError(t, cw.Write([]string{fmt.Sprint(i), r.guid, r.current, r.postal, r.street, r.city}))
	}
	cw.Flush()
	require.NoError(t, cw.Error())
	return path
}

func readChangelog(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '¬'
	recs, err := cr.ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, []string{"guid", "current", "postalcode", "addr_prev", "addr_curr", "status"}, recs[0])
	return recs[1:]
}

func newTestEngine(t *testing.T, chunkSize int) (*Engine, string) {
	t.Helper()
	work := t.TempDir()
	cfg := Config{ChunkSize: chunkSize, Workers: 4, WorkDir: work, ContentSeparator: "|"}
	return NewEngine(cfg, testLayout(), zap.NewNop(), nil), work
}

func assertWorkDirEmpty(t *testing.T, work string) {
	t.Helper()
	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries, "working storage must be removed")
}

func TestRun_ExampleScenario(t *testing.T) {
	dir := t.TempDir()
	old := writeDataset(t, dir, "old.csv", []testRow{{"a1", "1", "101000", "Moscow", "Arbat St"}})

	t.Run("changed content", func(t *testing.T) {
		eng, work := newTestEngine(t, 10)
		cur := writeDataset(t, dir, "changed.csv", []testRow{{"a1", "1", "101000", "Moscow", "New Arbat St"}})
		out := filepath.Join(dir, "changed_log.csv")

		summary, err := eng.Run(context.Background(), old, cur, out)
		require.NoError(t, err)

		assert.Equal(t, [][]string{
			{"a1", "1", "101000", "Moscow|Arbat St", "Moscow|New Arbat St", "address names changed"},
		}, readChangelog(t, out))
		assert.Equal(t, int64(1), summary.Entries[StatusChanged])
		assert.Equal(t, int64(1), summary.Total())
		assert.Equal(t, int64(1), summary.Prefixes[10].Changed)
		assertWorkDirEmpty(t, work)
	})

	t.Run("key removed", func(t *testing.T) {
		eng, _ := newTestEngine(t, 10)
		cur := writeDataset(t, dir, "deleted.csv", []testRow{{"b2", "1", "101000", "Moscow", "Arbat St"}})
		out := filepath.Join(dir, "deleted_log.csv")

		_, err := eng.Run(context.Background(), old, cur, out)
		require.NoError(t, err)

		recs := readChangelog(t, out)
		sortRecords(recs)
		assert.Equal(t, [][]string{
			{"a1", "1", "101000", "Moscow|Arbat St", "", "deleted"},
			{"b2", "1", "101000", "", "Moscow|Arbat St", "new address"},
		}, recs)
	})

	t.Run("postal code edit is a delete and an add", func(t *testing.T) {
		eng, _ := newTestEngine(t, 10)
		cur := writeDataset(t, dir, "postal.csv", []testRow{{"a1", "1", "101001", "Moscow", "Arbat St"}})
		out := filepath.Join(dir, "postal_log.csv")

		summary, err := eng.Run(context.Background(), old, cur, out)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.Entries[StatusNew])
		assert.Equal(t, int64(1), summary.Entries[StatusDeleted])
		assert.Equal(t, int64(0), summary.Entries[StatusChanged])
	})
}

func sortRecords(recs [][]string) {
	sort.Slice(recs, func(i, j int) bool {
		return strings.Join(recs[i], "\x00") < strings.Join(recs[j], "\x00")
	})
}

// randomVersions builds two overlapping versions with every kind of difference.
func randomVersions(seed int64, n int) (old, cur []testRow) {
	rng := rand.New(rand.NewSource(seed))
	streets := []string{"Arbat", "Tverskaya", "Lenina", "Mira"}

	for i := 0; i < n; i++ {
		guid := fmt.Sprintf("%x%07d-0000-0000-0000-000000000000", rng.Intn(16), i)
		r := testRow{guid, "1", fmt.Sprintf("1%05d", rng.Intn(1000)), "Moscow", streets[rng.Intn(len(streets))]}

		switch rng.Intn(5) {
		case 0: // deleted
			old = append(old, r)
		case 1: // added
			cur = append(cur, r)
		case 2: // renamed
			old = append(old, r)
			r.street += " 2"
			cur = append(cur, r)
		default: // unchanged, with a historic record
			hist := r
			hist.current = "0"
			hist.postal = "100000"
			old = append(old, r, hist)
			cur = append(cur, r, hist)
		}
	}
	rng.Shuffle(len(cur), func(i, j int) { cur[i], cur[j] = cur[j], cur[i] })
	return old, cur
}

// referenceDiff is a whole-dataset outer join.
func referenceDiff(old, cur []testRow) [][]string {
	prev := make(map[Key]string, len(old))
	for _, r := range old {
		prev[r.key()] = r.content()
	}
	var out [][]string
	for _, r := range cur {
		k := r.key()
		p, ok := prev[k]
		switch {
		case !ok:
			out = append(out, []string{k.GUID, k.Current, k.PostalCode, "", r.content(), string(StatusNew)})
		case p != r.content():
			out = append(out, []string{k.GUID, k.Current, k.PostalCode, p, r.content(), string(StatusChanged)})
		}
		delete(prev, k)
	}
	for k, p := range prev {
		out = append(out, []string{k.GUID, k.Current, k.PostalCode, p, "", string(StatusDeleted)})
	}
	sortRecords(out)
	return out
}

func TestRun_MatchesWholeDatasetJoin(t *testing.T) {
	dir := t.TempDir()
	oldRows, curRows := randomVersions(42, 500)
	old := writeDataset(t, dir, "old.csv", oldRows)
	cur := writeDataset(t, dir, "cur.csv", curRows)
	want := referenceDiff(oldRows, curRows)
	require.NotEmpty(t, want)

	for _, chunk := range []int{1, 7, 128, 1_000_000} {
		t.Run(fmt.Sprintf("chunk_%d", chunk), func(t *testing.T) {
			eng, work := newTestEngine(t, chunk)
			out := filepath.Join(dir, fmt.Sprintf("log_%d.csv", chunk))

			summary, err := eng.Run(context.Background(), old, cur, out)
			require.NoError(t, err)

			got := readChangelog(t, out)
			sortRecords(got)
			assert.Equal(t, want, got)
			assert.Equal(t, int64(len(want)), summary.Total())
			assert.Equal(t, int64(len(oldRows)), summary.RowsOld)
			assert.Equal(t, int64(len(curRows)), summary.RowsNew)
			assert.Equal(t, (len(oldRows)+chunk-1)/chunk, summary.ChunksOld)
			assertWorkDirEmpty(t, work)
		})
	}
}

func TestDisassembleAssemble_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	rows, _ := randomVersions(7, 300)
	input := writeDataset(t, dir, "in.csv", rows)

	eng, _ := newTestEngine(t, 13)
	parts := filepath.Join(dir, "parts")
	hex := filepath.Join(dir, "hex")
	require.NoError(t, os.MkdirAll(parts, 0o755))
	require.NoError(t, os.MkdirAll(hex, 0o755))

	_, n, err := eng.Disassemble(context.Background(), input, parts, VersionOld)
	require.NoError(t, err)
	assert.Equal(t, int64(len(rows)), n)

	var got []string
	for p := range PrefixCount {
		count, err := eng.Assemble(context.Background(), parts, hex, p)
		require.NoError(t, err)

		var inShard int64
		err = ReadRows(filepath.Join(hex, shardName(p)), func(r Row) error {
			prefix, err := PrefixOf(r.GUID)
			require.NoError(t, err)
			assert.Equal(t, p, prefix, "row %s landed in the wrong shard", r.GUID)
			got = append(got, strings.Join([]string{r.GUID, r.Current, r.PostalCode, r.Content}, "¬"))
			inShard++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, count, inShard)
	}

	want := make([]string, 0, len(rows))
	for _, r := range rows {
		want = append(want, strings.Join([]string{r.guid, r.current, r.postal, r.content()}, "¬"))
	}
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestRun_EmptySide(t *testing.T) {
	dir := t.TempDir()
	rows := []testRow{
		{"0abc", "1", "101000", "Moscow", "Arbat"},
		{"Fabc", "1", "101000", "Moscow", "Mira"},
	}
	empty := writeDataset(t, dir, "empty.csv", nil)
	full := writeDataset(t, dir, "full.csv", rows)

	m := metrics.NewMetrics()
	eng := NewEngine(Config{ChunkSize: 10, Workers: 2, WorkDir: t.TempDir()}, testLayout(), zap.NewNop(), m)

	summary, err := eng.Run(context.Background(), empty, full, filepath.Join(dir, "added.csv"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Entries[StatusNew])
	assert.Equal(t, int64(1), summary.Prefixes[0].Added)
	assert.Equal(t, int64(1), summary.Prefixes[15].Added, "upper-case hex goes to the lower-case shard")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ChangelogRowsTotal.WithLabelValues("new")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ChangelogEntriesTotal.WithLabelValues(string(StatusNew))))

	summary, err = eng.Run(context.Background(), full, empty, filepath.Join(dir, "removed.csv"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Entries[StatusDeleted])

	summary, err = eng.Run(context.Background(), empty, empty, filepath.Join(dir, "none.csv"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total())
	assert.Empty(t, readChangelog(t, filepath.Join(dir, "none.csv")))
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	good := writeDataset(t, dir, "good.csv", []testRow{{"a1", "1", "101000", "Moscow", "Arbat"}})

	tests := []struct {
		name    string
		oldPath string
		newPath string
		target  error
	}{
		{
			name:    "duplicate identity key",
			oldPath: good,
			newPath: writeDataset(t, dir, "dup.csv", []testRow{
				{"a1", "1", "101000", "Moscow", "Arbat"},
				{"a1", "1", "101000", "Moscow", "Mira"},
			}),
			target: faults.ErrStructuralViolation,
		},
		{
			name:    "non-hex guid",
			oldPath: good,
			newPath: writeDataset(t, dir, "nonhex.csv", []testRow{{"zz", "1", "101000", "Moscow", "Arbat"}}),
			target:  faults.ErrStructuralViolation,
		},
		{
			name:    "missing input",
			oldPath: filepath.Join(dir, "absent.csv"),
			newPath: good,
			target:  faults.ErrSourceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, work := newTestEngine(t, 1)
			out := filepath.Join(dir, "out_"+strings.ReplaceAll(tt.name, " ", "_")+".csv")

			_, err := eng.Run(context.Background(), tt.oldPath, tt.newPath, out)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr), "no partial change log")
			assertWorkDirEmpty(t, work)
		})
	}
}

func TestRun_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("guid¬current¬city\na1¬1¬Moscow\n"), 0o644))

	eng, _ := newTestEngine(t, 10)
	_, err := eng.Run(context.Background(), path, path, filepath.Join(dir, "out.csv"))
	var v *faults.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "changelog_header", v.Check)
}

func TestRun_KeepWorkDir(t *testing.T) {
	dir := t.TempDir()
	in := writeDataset(t, dir, "in.csv", []testRow{{"a1", "1", "101000", "Moscow", "Arbat"}})

	work := t.TempDir()
	eng := NewEngine(Config{ChunkSize: 10, Workers: 1, WorkDir: work, KeepWorkDir: true}, testLayout(), zap.NewNop(), nil)
	summary, err := eng.Run(context.Background(), in, in, filepath.Join(dir, "out.csv"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(work, summary.RunID, "chlog", "a.shard"))
	assert.NoError(t, err)
}

func TestPrefixOf(t *testing.T) {
	tests := []struct {
		guid string
		want int
		ok   bool
	}{
		{"0a1b", 0, true},
		{"9fff", 9, true},
		{"a000", 10, true},
		{"F000", 15, true},
		{"g000", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.guid, func(t *testing.T) {
			got, err := PrefixOf(tt.guid)
			if !tt.ok {
				assert.True(t, faults.IsStructural(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout("|")
	assert.Equal(t, '¬', l.Comma)
	assert.Len(t, l.Content, 17)
	assert.Equal(t, "region_f", l.Content[len(l.Content)-1])
}
