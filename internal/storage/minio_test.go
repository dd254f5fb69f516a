package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	a := ObjectKey("My Car.JPG")
	b := ObjectKey("My Car.JPG")
	assert.True(t, strings.HasPrefix(a, "cars_images/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
	// uuid plus extension
	assert.Len(t, strings.TrimPrefix(a, KeyPrefix), 36+len(".jpg"))

	assert.Equal(t, KeyPrefix, ObjectKey("noext")[:len(KeyPrefix)])
}

func TestAllowedImage(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPEG", "c.webp", "d.gif", "e.jpg"} {
		assert.True(t, AllowedImage(name), name)
	}
	for _, name := range []string{"a.exe", "b", "c.svg", "d.png.sh"} {
		assert.False(t, AllowedImage(name), name)
	}
}

func TestOpenRejectsForeignKeys(t *testing.T) {
	s := &MinIOStore{bucket: "carmarket"}
	_, _, err := s.Open(context.Background(), "cars_images/../secrets/x.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Open(context.Background(), "other/x.png")
	assert.ErrorIs(t, err, ErrNotFound)
}
