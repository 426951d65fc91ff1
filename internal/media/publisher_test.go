package media

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestNewPublisher(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")

	p, err := NewPublisher(dir, "/media/", 1600)
	require.NoError(t, err)

	assert.Equal(t, dir, p.MediaDir())
	_, err = os.Stat(dir)
	assert.NoError(t, err, "media directory was not created")
}

func TestPublish_CopiesSmallImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "kerk.png")
	writePNG(t, src, 100, 50)

	p, err := NewPublisher(t.TempDir(), "/media", 1600)
	require.NoError(t, err)

	url, err := p.Publish(3, src)
	require.NoError(t, err)
	assert.Equal(t, "/media/edition-3/kerk.png", url)

	want, _ := os.ReadFile(src)
	got, err := os.ReadFile(filepath.Join(p.MediaDir(), "edition-3", "kerk.png"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPublish_ResizesWideImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "breed.png")
	writePNG(t, src, 400, 200)

	p, err := NewPublisher(t.TempDir(), "/media", 100)
	require.NoError(t, err)

	_, err = p.Publish(1, src)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(p.MediaDir(), "edition-1", "breed.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestPublish_UndecodableIsCopied(t *testing.T) {
	src := filepath.Join(t.TempDir(), "portret.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

	p, err := NewPublisher(t.TempDir(), "/media", 10)
	require.NoError(t, err)

	url, err := p.Publish(2, src)
	require.NoError(t, err)
	assert.Equal(t, "/media/edition-2/portret.jpg", url)
}

func TestPublish_ReusesPublishedFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(src, []byte("v1"), 0644))

	p, err := NewPublisher(t.TempDir(), "/media", 0)
	require.NoError(t, err)
	_, err = p.Publish(1, src)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("v2"), 0644))
	_, err = p.Publish(1, src)
	require.NoError(t, err)

	got, _ := os.ReadFile(filepath.Join(p.MediaDir(), "edition-1", "a.jpg"))
	assert.Equal(t, "v1", string(got))

	require.NoError(t, p.InvalidateEdition(1))
	_, err = os.Stat(filepath.Join(p.MediaDir(), "edition-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestPublish_MissingSource(t *testing.T) {
	p, err := NewPublisher(t.TempDir(), "/media", 100)
	require.NoError(t, err)

	_, err = p.Publish(1, filepath.Join(t.TempDir(), "weg.jpg"))
	assert.Error(t, err)
}
