package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() FugueConfig {
	return FugueConfig{
		"default": {
			Endpoint: "http://ava-head:8080",
			Creds: FugueCreds{
				Username: "researcher",
				Apikey:   "secret",
			},
		},
		"ava": {
			Endpoint: "http://ava-head:8080",
			Creds: FugueCreds{
				Username: "researcher",
				Apikey:   "secret",
			},
		},
	}
}

func TestConfigRoundTrip(t *testing.T) {
	t.Setenv(FugueHpcConfigEnv, filepath.Join(t.TempDir(), "config.json"))

	require.NoError(t, WriteFugueConfig(testConfig()))
	config, err := ReadFugueConfig()
	require.NoError(t, err)
	assert.Equal(t, testConfig(), config)
}

func TestReadConfigMissing(t *testing.T) {
	t.Setenv(FugueHpcConfigEnv, filepath.Join(t.TempDir(), "config.json"))

	_, err := ReadFugueConfig()
	assert.Error(t, err)
}

func TestConfigTarget(t *testing.T) {
	t.Setenv(FugueHpcConfigEnv, filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, WriteFugueConfig(testConfig()))

	// no target file yet
	assert.Equal(t, "default", ReadFugueConfigTarget())

	require.NoError(t, WriteFugueConfigTarget("ava"))
	assert.Equal(t, "ava", ReadFugueConfigTarget())

	cluster, err := GetClusterConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://ava-head:8080", cluster.Endpoint)
}

func TestGetClusterConfigUnknownTarget(t *testing.T) {
	t.Setenv(FugueHpcConfigEnv, filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, WriteFugueConfig(testConfig()))
	require.NoError(t, WriteFugueConfigTarget("ava-b"))

	_, err := GetClusterConfig()
	assert.Error(t, err)
}

func TestGetUrlCreds(t *testing.T) {
	cluster := testConfig()["default"]
	values := cluster.GetUrlCreds()
	assert.Equal(t, "researcher", values.Get("username"))
	assert.Equal(t, "secret", values.Get("apikey"))
}
