package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var c Config
	c.Polling.IntervalMinutes = 30
	c.Search.Make = "Dodge"
	c.Search.YearMin = 1994
	c.Search.YearMax = 2026
	c.Search.Locations = []string{"Calgary", "Edmonton"}
	c.Discord.ChannelID = "123456789"
	c.Sources.PickNPull.Enabled = true
	c.Sources.PickNPull.Stores = []StoreRef{{ID: "1205", Location: "Calgary"}}
	return c
}

func hasMsg(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestLoad_ReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  http_addr: "127.0.0.1:9999"
search:
  make: "Dodge"
  models: ["Ram", "Dakota"]
  year_min: 1994
  year_max: 2026
  locations: ["Calgary"]
sources:
  picknpull:
    enabled: true
    stores:
      - id: "1205"
        location: "Calgary"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.App.HTTPAddr)
	assert.Equal(t, []string{"Ram", "Dakota"}, cfg.Search.Models)
	require.Len(t, cfg.Sources.PickNPull.Stores, 1)
	assert.Equal(t, "1205", cfg.Sources.PickNPull.Stores[0].ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestEnsureUserConfig_CopiesPackagedDefault(t *testing.T) {
	dir := t.TempDir()
	packaged := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(packaged, []byte("app:\n  http_addr: \"127.0.0.1:1111\"\n"), 0o644))

	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	path, err := EnsureUserConfig(dataDir, packaged)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:1111", cfg.App.HTTPAddr)
}

func TestEnsureUserConfig_WritesBuiltinWhenNoPackagedFile(t *testing.T) {
	dataDir := t.TempDir()

	path, err := EnsureUserConfig(dataDir, filepath.Join(dataDir, "does-not-exist.yml"))
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	// the shipped default must survive its own validation
	_, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), "builtin default failed validation: %v", v.Errors)
	assert.True(t, cfg.Notify.TestMode)
}

func TestEnsureUserConfig_KeepsExistingFile(t *testing.T) {
	dataDir := t.TempDir()
	existing := filepath.Join(dataDir, "config.yml")
	require.NoError(t, os.WriteFile(existing, []byte("# hand edited\n"), 0o644))

	path, err := EnsureUserConfig(dataDir, "ignored.yml")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# hand edited\n", string(b))
}

func TestApplyEnv_Overrides(t *testing.T) {
	t.Setenv("YARDWATCH_HTTP_ADDR", "127.0.0.1:7777")
	t.Setenv("YARDWATCH_TEST_MODE", "true")

	cfg := validConfig()
	ApplyEnv(&cfg)

	assert.Equal(t, "127.0.0.1:7777", cfg.App.HTTPAddr)
	assert.True(t, cfg.Notify.TestMode)
}

func TestNormalizeAndValidate_ValidConfig(t *testing.T) {
	out, v := NormalizeAndValidate(validConfig())
	assert.True(t, v.OK(), "unexpected errors: %v", v.Errors)
	assert.Empty(t, v.Warnings)
	assert.Equal(t, 30, out.Polling.IntervalMinutes)
}

func TestNormalizeAndValidate_AppliesDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.Polling.IntervalMinutes = 0
	cfg.Search.YearMin = 0
	cfg.Search.YearMax = 0

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK(), "unexpected errors: %v", v.Errors)
	assert.Equal(t, 30, out.Polling.IntervalMinutes)
	assert.Equal(t, 120, out.Polling.SourceTimeoutSeconds)
	assert.Equal(t, float64(3), out.Polling.RequestDelaySeconds)
	assert.Equal(t, 3, out.Polling.MaxRetries)
	assert.Equal(t, 1994, out.Search.YearMin)
	assert.Equal(t, 2026, out.Search.YearMax)
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	cfg := validConfig()
	cfg.Polling.IntervalMinutes = -10
	cfg.Search.YearMin = 2030
	cfg.Search.YearMax = 2026
	cfg.Search.Locations = nil
	cfg.Discord.ChannelID = ""
	cfg.Sources.PickNPull.Enabled = false

	_, v := NormalizeAndValidate(cfg)
	assert.False(t, v.OK())
	assert.True(t, hasMsg(v.Errors, "interval_minutes"))
	assert.True(t, hasMsg(v.Errors, "year_min"))
	assert.True(t, hasMsg(v.Errors, "locations"))
	assert.True(t, hasMsg(v.Errors, "channel_id"))
	assert.True(t, hasMsg(v.Errors, "no sources enabled"))
}

func TestNormalizeAndValidate_TestModeSkipsChannelRequirement(t *testing.T) {
	cfg := validConfig()
	cfg.Discord.ChannelID = ""
	cfg.Notify.TestMode = true

	_, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK(), "unexpected errors: %v", v.Errors)
}

func TestNormalizeAndValidate_MailAlertRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.MailAlert.Enabled = true

	out, v := NormalizeAndValidate(cfg)
	assert.True(t, hasMsg(v.Errors, "imap_host"))
	assert.True(t, hasMsg(v.Errors, "username"))
	assert.Equal(t, "INBOX", out.Sources.MailAlert.Mailbox)
	assert.True(t, hasMsg(v.Warnings, "search_subject_any"))
}

func TestNormalizeAndValidate_DedupesLists(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Locations = []string{"Calgary", " calgary ", "", "Edmonton"}

	out, v := NormalizeAndValidate(cfg)
	require.True(t, v.OK(), "unexpected errors: %v", v.Errors)
	assert.Equal(t, []string{"Calgary", "Edmonton"}, out.Search.Locations)
}

func TestNormalizeAndValidate_LowIntervalWarns(t *testing.T) {
	cfg := validConfig()
	cfg.Polling.IntervalMinutes = 2

	_, v := NormalizeAndValidate(cfg)
	assert.True(t, v.OK())
	assert.True(t, hasMsg(v.Warnings, "very low"))
}

func TestNormalizeAndValidate_PickNPullNeedsStores(t *testing.T) {
	cfg := validConfig()
	cfg.Sources.PickNPull.Stores = nil

	_, v := NormalizeAndValidate(cfg)
	assert.True(t, hasMsg(v.Errors, "picknpull.stores"))
}
