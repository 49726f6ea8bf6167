package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-admin-server/internal/config"
)

func TestObjectPath(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "modules/u-1/1700000000123.png", ObjectPath(EntityModule, "u-1", "cover.PNG", at))
	assert.Equal(t, "articles/u-1/1700000000123.jpg", ObjectPath(EntityArticle, "u-1", "a.b.jpg", at))
	assert.Equal(t, "u-1/1700000000123.webp", ObjectPath(EntityAvatar, "u-1", "me.webp", at))
	assert.Equal(t, "u-1/1700000000123.bin", ObjectPath(EntityAvatar, "u-1", "noext", at))
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.MinIOConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	_, err = NewClient(config.MinIOConfig{})
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	c, err := NewClient(config.MinIOConfig{
		Endpoint:  "files.local:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "avatars",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://files.local:9000/avatars/u-1/1.png", c.PublicURL("u-1/1.png"))

	c, err = NewClient(config.MinIOConfig{
		Endpoint:  "files.local:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "avatars",
		PublicURL: "https://cdn.example.com/avatars/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u-1/1.png", c.PublicURL("/u-1/1.png"))
}
