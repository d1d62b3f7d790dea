package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskPutGetDelete(t *testing.T) {
	ctx := context.Background()
	d := NewLocalDisk(t.TempDir(), "http://cdn.test/storage/")

	key, err := d.PutStream(ctx, "products/7/a.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.True(t, d.Exists(ctx, key))

	data, err := d.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
	assert.Equal(t, "http://cdn.test/storage/products/7/a.jpg", d.URL(key))

	require.NoError(t, d.Delete(ctx, key))
	assert.False(t, d.Exists(ctx, key))
	assert.NoError(t, d.Delete(ctx, key))
}

func TestLocalDiskRejectsEscapingKeys(t *testing.T) {
	d := NewLocalDisk(t.TempDir(), "")
	err := d.Put(context.Background(), "../../etc/passwd", []byte("x"))
	assert.Error(t, err)
}

func TestObjectName(t *testing.T) {
	name := ObjectName("/products/7/", "Photo.JPG")
	assert.True(t, strings.HasPrefix(name, "products/7/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, name, ObjectName("products/7", "Photo.JPG"))
}

func TestManagerDefault(t *testing.T) {
	m := NewManager("local")
	_, err := m.Use("local")
	assert.Error(t, err)

	m.Register("local", NewLocalDisk(t.TempDir(), ""))
	assert.NotNil(t, m.Default())
}
