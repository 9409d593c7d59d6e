package recyclebin

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathConverterHostEncoding(t *testing.T) {
	latin1, err := NewPathConverter("latin1")
	require.NoError(t, err)
	assert.Equal(t, "latin1", latin1.Name())

	deleted := time.Date(2020, 2, 2, 2, 2, 2, 0, time.UTC)

	// An encodable pathname is re-encoded into the host encoding.
	record, err := ParseRecycleBin(bytes.NewReader(
		buildRecord(t, 2, 1, deleted, `C:\Résumé.txt`)), latin1)
	require.NoError(t, err)
	assert.Equal(t, "C:\\R\xe9sum\xe9.txt", record.DeletedPath)
	assert.Equal(t, []string{"c", "R\xe9sum\xe9.txt"}, record.Components())

	// Runes outside the host encoding can not be restored.
	_, err = ParseRecycleBin(bytes.NewReader(
		buildRecord(t, 2, 1, deleted, `C:\データ.txt`)), latin1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "not representable")
}

func TestPathConverterUnknownEncoding(t *testing.T) {
	_, err := NewPathConverter("not-a-real-encoding")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown filesystem encoding")

	// The default is utf-8 passthrough.
	converter, err := NewPathConverter("")
	require.NoError(t, err)
	assert.Equal(t, "utf-8", converter.Name())
}

func TestRestoreComponents(t *testing.T) {
	for _, testcase := range []struct {
		pathname string
		expected []string
	}{
		{`C:\Users\mike\f.txt`, []string{"c", "Users", "mike", "f.txt"}},
		{`Z:\f.txt`, []string{"z", "f.txt"}},

		// The drive letter folds to lower case.
		{`D:\X.TXT`, []string{"d", "X.TXT"}},

		// Empty and dot components disappear.
		{`C:\a\\b\.\c\..\d`, []string{"c", "a", "b", "c", "d"}},
		{`C:\`, []string{"c"}},
	} {
		components, err := restoreComponents(testcase.pathname)
		require.NoError(t, err, testcase.pathname)
		assert.Equal(t, testcase.expected, components, testcase.pathname)
	}
}
