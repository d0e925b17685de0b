package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.NoError(t, f.Close())

	newPath := filepath.Join(dir, "renamed.txt")
	assert.NoError(t, lfs.Rename(fpath, newPath))

	assert.NoError(t, lfs.Truncate(newPath, 3))
	info, err = lfs.Stat(newPath)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())

	assert.NoError(t, lfs.Remove(newPath))
	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.idx")

	require.NoError(t, WriteFileAtomic(nil, path, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(nil, path, []byte("second"), 0644))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic_RenameFailureKeepsOldContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.idx")
	ffs := NewFaultyFS(nil)

	require.NoError(t, WriteFileAtomic(ffs, path, []byte("old"), 0644))

	ffs.AddRule("data.idx", Fault{FailAfterBytes: -1, FailOnRename: true})
	err := WriteFileAtomic(ffs, path, []byte("new"), 0644)
	require.ErrorIs(t, err, ErrInjected)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
}

func TestFaultyFS_TornWrite(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	custom := errors.New("disk full")
	ffs.AddRule("faulty", Fault{FailAfterBytes: 5, Err: custom})

	fpath := filepath.Join(tmp, "faulty.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hel"))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = f.Write([]byte("lo!!"))
	assert.ErrorIs(t, err, custom)
	assert.Equal(t, 2, n)
	require.NoError(t, f.Close())

	b, err := os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestFaultyFS_SyncAndClose(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true})

	f, err := ffs.OpenFile(filepath.Join(tmp, "sync.bin"), os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	ffs.ClearRules()
	f, err = ffs.OpenFile(filepath.Join(tmp, "sync.bin"), os.O_RDWR, 0644)
	require.NoError(t, err)
	assert.NoError(t, f.Sync())
	assert.NoError(t, f.Close())
}
