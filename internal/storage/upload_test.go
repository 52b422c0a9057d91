package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	puts   map[string]string
	types  map[string]string
	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string]string{}, types: map[string]string{}}
}

func (f *fakeStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.puts[key] = string(b)
	f.types[key] = contentType
	return nil
}

func (f *fakeStore) PublicURL(_ context.Context, key string) (string, error) {
	return stripSignature("https://bucket.example.com/" + key + "?X-Amz-Signature=abc&X-Amz-Expires=3600"), nil
}

func newTestUploader(store ObjectStore) *Uploader {
	u := NewUploader(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	u.newID = func() string { return "0f8c2a52-7d6e-4f57-9a1c-3c1f0d1b2e4a" }
	return u
}

func TestUpload(t *testing.T) {
	store := newFakeStore()
	u := newTestUploader(store)

	url, err := u.Upload(context.Background(), 42, "Screenshot.PNG", strings.NewReader("pixels"), 6)
	require.NoError(t, err)

	key := "0f8c2a52-7d6e-4f57-9a1c-3c1f0d1b2e4a/42.png"
	assert.Equal(t, "https://bucket.example.com/"+key, url)
	assert.Equal(t, "pixels", store.puts[key])
	assert.Equal(t, "image/png", store.types[key])
}

func TestUploadRejectsUnsupportedTypes(t *testing.T) {
	store := newFakeStore()
	u := newTestUploader(store)

	for _, name := range []string{"notes.txt", "archive.tar.gz", "noextension", "script.svg.exe"} {
		_, err := u.Upload(context.Background(), 1, name, strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
	assert.Empty(t, store.puts)
}

func TestUploadStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("bucket offline")
	u := newTestUploader(store)

	_, err := u.Upload(context.Background(), 1, "a.gif", strings.NewReader("x"), 1)
	assert.ErrorContains(t, err, "bucket offline")
}

func TestExtension(t *testing.T) {
	for name, want := range map[string]string{"a.png": "png", "b.JPEG": "jpeg", "c.jpg": "jpg", "d.svg": "svg", "e.Gif": "gif"} {
		got, err := Extension(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}

	_, err := Extension("f.bmp")
	assert.EqualError(t, err, "unsupported file type: Files of type bmp are not supported")
}

func TestStripSignature(t *testing.T) {
	assert.Equal(t, "https://s3.example.com/b/k.png", stripSignature("https://s3.example.com/b/k.png?X-Amz-Signature=1"))
	assert.Equal(t, "https://s3.example.com/b/k.png", stripSignature("https://s3.example.com/b/k.png"))
}
