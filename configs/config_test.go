package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)

	config, err := Load("")

	req.NoError(err)
	req.Equal(8000, config.Server.Port)
	req.Equal("/ws", config.Relay.Path)
	req.Equal(256, config.Relay.SendBuffer)
	req.Equal(10*time.Second, config.Relay.WriteWait)
	req.Equal("postgres", config.Database.Driver)
	req.Equal("relay:rooms", config.Redis.Channel)
	req.Equal(24*time.Hour, config.Presence.TTL)
	req.Empty(config.JWT.Secret)
}

func TestLoad_File_And_Env(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("server:\n  port: 9090\ndatabase:\n  driver: mongo\nrelay:\n  pong_wait: 30s\n")
	req.NoError(os.WriteFile(path, yaml, 0o644))
	t.Setenv("RELAY_JWT_SECRET", "s3cret")
	t.Setenv("RELAY_SERVER_PORT", "9191")

	config, err := Load(path)

	req.NoError(err)
	req.Equal(9191, config.Server.Port)
	req.Equal("mongo", config.Database.Driver)
	req.Equal(30*time.Second, config.Relay.PongWait)
	req.Equal("s3cret", config.JWT.Secret)
}

func TestLoad_Missing_File(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
}
