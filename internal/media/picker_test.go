package media_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iyhunko/hifi-storefront/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func TestLocalPicker_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	picker := media.NewLocalPicker(dir)

	uri, err := picker.Save(context.Background(), bytes.NewReader(pngHeader))

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"))
	assert.Equal(t, ".png", filepath.Ext(uri))
	stored, err := os.ReadFile(filepath.FromSlash(strings.TrimPrefix(uri, "file://")))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestLocalPicker_SaveRejects(t *testing.T) {
	dir := t.TempDir()
	picker := media.NewLocalPicker(dir)

	_, err := picker.Save(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, media.ErrNoImage)

	_, err = picker.Save(context.Background(), strings.NewReader("just some text"))
	assert.ErrorIs(t, err, media.ErrNotAnImage)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalPicker_SaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := media.NewLocalPicker(t.TempDir()).Save(ctx, bytes.NewReader(pngHeader))

	assert.ErrorIs(t, err, context.Canceled)
}
