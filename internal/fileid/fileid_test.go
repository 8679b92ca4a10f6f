package fileid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileID(t *testing.T) {
	id := FileID("/books/sabr.pdf")
	assert.Equal(t, id, FileID("/books/sabr.pdf"))
	assert.Len(t, id, 32)
	assert.True(t, Valid(id))
	assert.NotEqual(t, id, FileID("/books/ilm.pdf"))
}

func TestFileID_Normalized(t *testing.T) {
	id := FileID("/books/sabr")
	assert.Equal(t, id, FileID("/books/sabr/"))
	assert.Equal(t, id, FileID("/books/./sabr"))
	assert.Equal(t, id, FileID("/books/x/../sabr"))
}

func TestFileID_Relative(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, FileID(filepath.Join(wd, "a", "b.txt")), FileID("a/b.txt"))
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("abc"))
	assert.False(t, Valid("zz000000000000000000000000000000"))
	assert.True(t, Valid("00112233445566778899aabbccddeeff"))
}
