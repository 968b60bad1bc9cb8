package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abenov/accounts-server/internal/model"
)

func TestStore_UploadAndRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	locator, err := s.Upload(ctx, "1_abc.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "1_abc.png", locator)

	data, err := s.Read(locator)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestStore_Upload_CreatesDirectory(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewStore(dir)

	_, err := s.Upload(ctx, "a.jpg", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
}

func TestStore_Upload_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	_, err := s.Upload(ctx, "a.jpg", []byte("first"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "a.jpg", []byte("second"))
	require.NoError(t, err)

	data, err := s.Read("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestStore_Read_Missing(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Read("ghost.png")
	require.ErrorIs(t, err, model.ErrNotFound)
}
