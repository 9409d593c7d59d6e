package restore

import (
	"bytes"
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	recyclebin "www.velocidex.com/golang/recyclebin"
	"www.velocidex.com/golang/recyclebin/config"
	"www.velocidex.com/golang/recyclebin/logging"
)

func init() {
	logging.SuppressLogging = true
}

var test_encoder = unicode.UTF16(
	unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

// writeIFile drops a version 2 metadata record at path.
func writeIFile(t *testing.T, path string,
	deleted time.Time, size uint64, pathname string) {
	encoded, err := test_encoder.Bytes([]byte(pathname + "\x00"))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint64(2)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, size))
	require.NoError(t, binary.Write(buf, binary.LittleEndian,
		recyclebin.TimeToFiletime(deleted)))
	require.NoError(t, binary.Write(buf, binary.LittleEndian,
		uint32(len(encoded)/2)))
	buf.Write(encoded)

	require.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0600))
}

func writePair(t *testing.T, bin_dir, suffix string,
	deleted time.Time, pathname, content string) {
	writeIFile(t, filepath.Join(bin_dir, "$I"+suffix),
		deleted, uint64(len(content)), pathname)
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(bin_dir, "$R"+suffix), []byte(content), 0600))
}

func newTestRestorer(t *testing.T, options Options) *Restorer {
	restorer, err := New(config.GetDefaultConfig(), options)
	require.NoError(t, err)
	return restorer
}

func TestRestoreEndToEnd(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	target := filepath.Join(tmpdir, "out")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	deleted := time.Date(2019, 7, 12, 9, 15, 30, 0, time.UTC)
	writePair(t, bin_dir, "ABC.dat", deleted,
		`C:\docs\report.txt`, "0123456789")

	restorer := newTestRestorer(t, Options{TargetDir: target})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Restored)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, uint64(10), stats.BytesMoved)

	restored := filepath.Join(target, "c", "docs", "report.txt")
	data, err := ioutil.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(data))

	// The pair is gone from the bin.
	_, err = os.Lstat(filepath.Join(bin_dir, "$IABC.dat"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Lstat(filepath.Join(bin_dir, "$RABC.dat"))
	assert.True(t, os.IsNotExist(err))

	// The payload was written just now, so its mtime was rewound to
	// the recorded deletion time.
	stat, err := os.Lstat(restored)
	require.NoError(t, err)
	assert.True(t, stat.ModTime().UTC().Equal(deleted),
		"mtime %v, want %v", stat.ModTime().UTC(), deleted)

	// A second run over the emptied bin does nothing.
	stats, err = restorer.Run(bin_dir)
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, stats)
}

func TestRestoreCollisions(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	target := filepath.Join(tmpdir, "out")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	deleted := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	// The preferred name is already taken.
	require.NoError(t, os.MkdirAll(filepath.Join(target, "c", "docs"), 0700))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(target, "c", "docs", "report.txt"), []byte("old"), 0600))

	restorer := newTestRestorer(t, Options{TargetDir: target})

	writePair(t, bin_dir, "AAA.txt", deleted, `C:\docs\report.txt`, "first")
	_, err = restorer.Run(bin_dir)
	require.NoError(t, err)

	writePair(t, bin_dir, "AAA.txt", deleted, `C:\docs\report.txt`, "second")
	_, err = restorer.Run(bin_dir)
	require.NoError(t, err)

	data, err := ioutil.ReadFile(filepath.Join(target, "c", "docs", "report-1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	data, err = ioutil.ReadFile(filepath.Join(target, "c", "docs", "report-2.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// The original file is untouched.
	data, err = ioutil.ReadFile(filepath.Join(target, "c", "docs", "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestRestoreMissingPayload(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	deleted := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	writeIFile(t, filepath.Join(bin_dir, "$IXYZ.txt"), deleted, 10,
		`C:\lonely.txt`)

	restorer := newTestRestorer(t, Options{
		TargetDir: filepath.Join(tmpdir, "out")})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)

	assert.Equal(t, &Stats{Skipped: 1}, stats)

	// The orphan metadata stays for a later reunion with its payload.
	_, err = os.Lstat(filepath.Join(bin_dir, "$IXYZ.txt"))
	assert.NoError(t, err)
}

func TestRestoreSizeMismatch(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	deleted := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	writeIFile(t, filepath.Join(bin_dir, "$IBIG.dat"), deleted, 1000,
		`C:\big.dat`)
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(bin_dir, "$RBIG.dat"), []byte("tiny"), 0600))

	restorer := newTestRestorer(t, Options{
		TargetDir: filepath.Join(tmpdir, "out")})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)

	assert.Equal(t, &Stats{Failed: 1}, stats)

	// Both halves stay put for manual inspection.
	_, err = os.Lstat(filepath.Join(bin_dir, "$IBIG.dat"))
	assert.NoError(t, err)
	_, err = os.Lstat(filepath.Join(bin_dir, "$RBIG.dat"))
	assert.NoError(t, err)
}

func TestRestoreSinceFilter(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	target := filepath.Join(tmpdir, "out")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	writePair(t, bin_dir, "OLD.txt",
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), `C:\old.txt`, "old")
	writePair(t, bin_dir, "NEW.txt",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), `C:\new.txt`, "new")

	restorer := newTestRestorer(t, Options{
		TargetDir: target,
		Since:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Restored)
	assert.Equal(t, 1, stats.Skipped)

	_, err = os.Lstat(filepath.Join(target, "c", "new.txt"))
	assert.NoError(t, err)
	_, err = os.Lstat(filepath.Join(target, "c", "old.txt"))
	assert.True(t, os.IsNotExist(err))

	// The filtered pair is still in the bin.
	_, err = os.Lstat(filepath.Join(bin_dir, "$IOLD.txt"))
	assert.NoError(t, err)
	_, err = os.Lstat(filepath.Join(bin_dir, "$ROLD.txt"))
	assert.NoError(t, err)
}

func TestRestoreDryRun(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	target := filepath.Join(tmpdir, "out")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	deleted := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	writePair(t, bin_dir, "ABC.dat", deleted, `C:\docs\report.txt`, "data")

	restorer := newTestRestorer(t, Options{TargetDir: target, DryRun: true})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Restored)
	assert.Equal(t, uint64(4), stats.BytesMoved)

	// Nothing moved.
	_, err = os.Lstat(filepath.Join(bin_dir, "$IABC.dat"))
	assert.NoError(t, err)
	_, err = os.Lstat(filepath.Join(bin_dir, "$RABC.dat"))
	assert.NoError(t, err)
	_, err = os.Lstat(target)
	assert.True(t, os.IsNotExist(err))
}

// Files are processed before subdirectories and siblings in sorted
// order, so colliding restores number deterministically.
func TestRestoreTraversalOrder(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	target := filepath.Join(tmpdir, "out")
	require.NoError(t, os.MkdirAll(filepath.Join(bin_dir, "a"), 0700))
	require.NoError(t, os.MkdirAll(filepath.Join(bin_dir, "b"), 0700))

	deleted := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	writePair(t, bin_dir, "X.txt", deleted, `C:\same.txt`, "R")
	writePair(t, filepath.Join(bin_dir, "a"), "X.txt", deleted,
		`C:\same.txt`, "AA")
	writePair(t, filepath.Join(bin_dir, "b"), "X.txt", deleted,
		`C:\same.txt`, "BBB")

	restorer := newTestRestorer(t, Options{TargetDir: target})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Restored)

	for name, content := range map[string]string{
		"same.txt":   "R",
		"same-1.txt": "AA",
		"same-2.txt": "BBB",
	} {
		data, err := ioutil.ReadFile(filepath.Join(target, "c", name))
		require.NoError(t, err)
		assert.Equal(t, content, string(data), name)
	}
}

func TestRestoreMtimePreserved(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	target := filepath.Join(tmpdir, "out")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	// The payload predates its deletion - mtime must survive the
	// restore untouched.
	mtime := time.Date(2010, 6, 1, 12, 0, 0, 0, time.UTC)
	deleted := time.Date(2019, 7, 12, 9, 15, 30, 0, time.UTC)

	writePair(t, bin_dir, "OLD.doc", deleted, `C:\old.doc`, "content")
	require.NoError(t, os.Chtimes(
		filepath.Join(bin_dir, "$ROLD.doc"), mtime, mtime))

	restorer := newTestRestorer(t, Options{TargetDir: target})
	_, err = restorer.Run(bin_dir)
	require.NoError(t, err)

	stat, err := os.Lstat(filepath.Join(target, "c", "old.doc"))
	require.NoError(t, err)
	assert.True(t, stat.ModTime().UTC().Equal(mtime),
		"mtime %v, want %v", stat.ModTime().UTC(), mtime)
}

func TestRestoreBadMetadata(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	bin_dir := filepath.Join(tmpdir, "RECYCLER")
	require.NoError(t, os.Mkdir(bin_dir, 0700))

	require.NoError(t, ioutil.WriteFile(
		filepath.Join(bin_dir, "$IBAD.txt"), []byte("garbage"), 0600))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(bin_dir, "$RBAD.txt"), []byte("payload"), 0600))

	restorer := newTestRestorer(t, Options{
		TargetDir: filepath.Join(tmpdir, "out")})
	stats, err := restorer.Run(bin_dir)
	require.NoError(t, err)

	assert.Equal(t, &Stats{Failed: 1}, stats)

	_, err = os.Lstat(filepath.Join(bin_dir, "$IBAD.txt"))
	assert.NoError(t, err)
	_, err = os.Lstat(filepath.Join(bin_dir, "$RBAD.txt"))
	assert.NoError(t, err)
}

func TestRestoreUnlistableRoot(t *testing.T) {
	restorer := newTestRestorer(t, Options{TargetDir: "out"})
	stats, err := restorer.Run("/nonexistent/recycler")
	require.Error(t, err)
	assert.Nil(t, stats)
}

func TestRestoreRejectsUnknownEncoding(t *testing.T) {
	config_obj := config.GetDefaultConfig()
	config_obj.FilesystemEncoding = "klingon"

	_, err := New(config_obj, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown filesystem encoding")
}

func TestPayloadPath(t *testing.T) {
	assert.Equal(t, filepath.Join("bin", "$RKXV0R9.txt"),
		PayloadPath(filepath.Join("bin", "$IKXV0R9.txt")))
	assert.Equal(t, "$R0FD.dat", PayloadPath("$I0FD.dat"))
}

func TestResolveCollision(t *testing.T) {
	tmpdir, err := ioutil.TempDir("", "restore_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpdir)

	// Free names pass through.
	free := filepath.Join(tmpdir, "report.txt")
	resolved, err := resolveCollision(free)
	require.NoError(t, err)
	assert.Equal(t, free, resolved)

	// Taken names count up from 1, skipping taken numbers.
	require.NoError(t, ioutil.WriteFile(free, nil, 0600))
	require.NoError(t, ioutil.WriteFile(
		filepath.Join(tmpdir, "report-1.txt"), nil, 0600))

	resolved, err = resolveCollision(free)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpdir, "report-2.txt"), resolved)

	// Dotfiles keep their leading dot.
	dotfile := filepath.Join(tmpdir, ".bashrc")
	require.NoError(t, ioutil.WriteFile(dotfile, nil, 0600))

	resolved, err = resolveCollision(dotfile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpdir, ".bashrc-1"), resolved)
}
