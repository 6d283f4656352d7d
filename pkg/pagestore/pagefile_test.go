package pagestore

// ============================================================================
// PageFile tests: lifecycle, allocation, CRC round-trip, tag gate.
// ============================================================================

import (
	"bytes"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) (*PageFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.page")
	return NewPageFile(path, 1, 4096, false), path
}

func fullOf(b byte, size int) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

// TestInitCreatesHeaderAndSuperPage covers Ensure() on a fresh file: the
// header is written and the super page is reserved without allocatePage.
// Only the header is on disk, so Exists() still reports false.
func TestInitCreatesHeaderAndSuperPage(t *testing.T) {
	pf, _ := newTestFile(t)
	require.NoError(t, pf.Ensure())
	assert.False(t, pf.Exists())
	assert.Equal(t, uint64(1), pf.Pages())
}

// TestPageRoundTrip writes a full page and reads it back, with and
// without preserving the verified CRC in the trailing slot.
func TestPageRoundTrip(t *testing.T) {
	pf, _ := newTestFile(t)
	require.NoError(t, pf.Ensure())

	id, err := pf.AllocatePage()
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	write := fullOf(0xAB, 4096)
	require.NoError(t, pf.Write(id, write, pf.Tag()))
	// Write clears the caller's CRC slot post-write.
	assert.Equal(t, byte(0), write[4092])

	readNoKeep := make([]byte, 4096)
	require.NoError(t, pf.Read(id, readNoKeep, false))
	assert.True(t, bytes.Equal(readNoKeep[:4092], fullOf(0xAB, 4092)))
	assert.Equal(t, []byte{0, 0, 0, 0}, readNoKeep[4092:4096])

	readKeep := make([]byte, 4096)
	require.NoError(t, pf.Read(id, readKeep, true))
	assert.NotEqual(t, []byte{0, 0, 0, 0}, readKeep[4092:4096])
}

// TestReadUnwrittenPageIsZero verifies that a short/absent read fills the
// buffer with zeros rather than erroring, matching FilePageStore.read's
// "page was not written yet" early return.
func TestReadUnwrittenPageIsZero(t *testing.T) {
	pf, _ := newTestFile(t)
	require.NoError(t, pf.Ensure())

	id, err := pf.AllocatePage()
	require.NoError(t, err)

	buf := make([]byte, 4096)
	require.NoError(t, pf.Read(id, buf, false))
	assert.Equal(t, make([]byte, 4096), buf)
}

// TestCRCMismatchIsIntegrityError verifies a corrupted page fails with a
// typed error carrying both CRC values and the offset.
func TestCRCMismatchIsIntegrityError(t *testing.T) {
	pf, _ := newTestFile(t)
	require.NoError(t, pf.Ensure())

	id, err := pf.AllocatePage()
	require.NoError(t, err)

	buf := fullOf(0x11, 4096)
	require.NoError(t, pf.Write(id, buf, pf.Tag()))

	// Corrupt a data byte directly on disk via a second read/modify/write
	// that bypasses CRC recomputation: flip byte 0 without touching the
	// slot by writing through Write (which recomputes CRC), is not a
	// corruption test — instead corrupt the file directly.
	corrupt := make([]byte, 1)
	corrupt[0] = 0x00
	offset := pf.pageOffset(id)
	_, werr := pf.file.WriteAt(corrupt, offset)
	require.NoError(t, werr)

	readBuf := make([]byte, 4096)
	err = pf.Read(id, readBuf, false)
	require.Error(t, err)
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "crc", integrity.Kind)
}

// TestAllocatePageConcurrentDistinct verifies the CAS allocator hands out
// distinct page IDs under concurrent callers.
func TestAllocatePageConcurrentDistinct(t *testing.T) {
	pf, _ := newTestFile(t)
	require.NoError(t, pf.Ensure())

	const n = 50
	ids := make([]PageID, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			id, err := pf.AllocatePage()
			require.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[PageID]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate page id %d", id)
		seen[id] = true
	}
	assert.Equal(t, uint64(n+1), pf.Pages())
}

// TestTruncateInvalidatesStaleWrites verifies that bumping the tag via
// Truncate turns a write carrying the old tag into a silent no-op.
func TestTruncateInvalidatesStaleWrites(t *testing.T) {
	pf, _ := newTestFile(t)
	require.NoError(t, pf.Ensure())

	id, err := pf.AllocatePage()
	require.NoError(t, err)
	staleTag := pf.Tag()

	require.NoError(t, pf.Truncate(7))
	assert.EqualValues(t, 1, pf.Pages())

	buf := fullOf(0xCD, 4096)
	require.NoError(t, pf.Write(id, buf, staleTag))

	readBuf := make([]byte, 4096)
	require.NoError(t, pf.Read(id, readBuf, false))
	assert.Equal(t, make([]byte, 4096), readBuf, "stale-tag write must be a no-op")

	require.NoError(t, pf.Write(id, buf, 7))
	require.NoError(t, pf.Read(id, readBuf, false))
	assert.Equal(t, fullOf(0xCD, 4092), readBuf[:4092])
}

// TestOpenWithWrongTypeFailsIntegrity verifies that reopening a page file
// with a different declared type fails checkFile rather than silently
// reinterpreting the existing header.
func TestOpenWithWrongTypeFailsIntegrity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.page")
	pf1 := NewPageFile(path, 1, 4096, false)
	require.NoError(t, pf1.Ensure())
	require.NoError(t, pf1.Stop(false))

	pf2 := NewPageFile(path, 2, 4096, false)
	err := pf2.Ensure()
	require.Error(t, err)
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
}

// TestOpenWithWrongPageSizeFailsIntegrity verifies the same checkFile
// guard against a mismatched page size.
func TestOpenWithWrongPageSizeFailsIntegrity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.page")
	pf1 := NewPageFile(path, 1, 4096, false)
	require.NoError(t, pf1.Ensure())
	require.NoError(t, pf1.Stop(false))

	pf2 := NewPageFile(path, 1, 8192, false)
	err := pf2.Ensure()
	require.Error(t, err)
	var integrity *IntegrityError
	require.ErrorAs(t, err, &integrity)
}

func TestStopThenReopenPreservesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.page")
	pf1 := NewPageFile(path, 1, 4096, false)
	require.NoError(t, pf1.Ensure())
	id, err := pf1.AllocatePage()
	require.NoError(t, err)
	buf := fullOf(0x42, 4096)
	require.NoError(t, pf1.Write(id, buf, pf1.Tag()))
	require.NoError(t, pf1.Stop(false))

	pf2 := NewPageFile(path, 1, 4096, false)
	require.NoError(t, pf2.Ensure())
	assert.Equal(t, pf1.Pages(), pf2.Pages())

	readBuf := make([]byte, 4096)
	require.NoError(t, pf2.Read(id, readBuf, false))
	assert.Equal(t, fullOf(0x42, 4092), readBuf[:4092])
}
