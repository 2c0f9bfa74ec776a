package engine

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluttersec/internal/config"
	"fluttersec/internal/extract"
	"fluttersec/pkg/types"
)

func buildLeakyAPK(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaky.apk")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := map[string]string{
		"AndroidManifest.xml":        "stub",
		"assets/flutter_assets/.env": "API_KEY=sk_live_1234\nDB_PASSWORD=hunter2\n",
		"assets/flutter_assets/google-services.json": "{}",
		"lib/arm64-v8a/libapp.so":                    "\x00https://api.prod.example.com/v2\x00AKIAABCDEFGHIJKLMNOP\x00",
		"lib/arm64-v8a/libflutter.so":                "\x7fELF",
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestScanEndToEnd(t *testing.T) {
	eng, err := NewEngine(config.GetDefaultConfig())
	require.NoError(t, err)

	result, sim, err := eng.Scan(context.Background(), &Task{PackagePath: buildLeakyAPK(t)})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotNil(t, sim)

	assert.NotEmpty(t, result.ScanID)
	assert.Equal(t, "leaky", result.AppName)
	assert.Equal(t, "unknown", result.PackageName)
	assert.Equal(t, types.PlatformAndroid, result.Platform)
	assert.False(t, result.Timestamp.IsZero())

	// .env (env detector), two sensitive assets, URL and AWS key in binary.
	counts := result.CountBySeverity()
	assert.GreaterOrEqual(t, counts["CRITICAL"], 2)
	assert.Less(t, result.SecurityScore, 100)
	assert.Equal(t, "F (Critical)", result.Grade)

	// The obvious env exposure makes the beginner the most likely attacker.
	assert.Equal(t, "beginner", sim.MostLikelyAttacker)
	assert.Equal(t, 2, result.TimeToCompromiseMinutes)
	require.NotNil(t, result.AttackerProfile)
	assert.Equal(t, "Beginner (Script Kiddie)", result.AttackerProfile.Level)

	assert.Equal(t, sim.OverallTimeMinutes, result.TimeToCompromiseMinutes)
}

func TestScanCleansUpWorkDir(t *testing.T) {
	before, err := filepath.Glob(filepath.Join(os.TempDir(), "fluttersec-*"))
	require.NoError(t, err)

	eng, err := NewEngine(config.GetDefaultConfig())
	require.NoError(t, err)
	_, _, err = eng.Scan(context.Background(), &Task{PackagePath: buildLeakyAPK(t)})
	require.NoError(t, err)

	after, err := filepath.Glob(filepath.Join(os.TempDir(), "fluttersec-*"))
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestScanMissingFile(t *testing.T) {
	eng, err := NewEngine(config.GetDefaultConfig())
	require.NoError(t, err)

	_, _, err = eng.Scan(context.Background(), &Task{PackagePath: filepath.Join(t.TempDir(), "gone.apk")})
	assert.ErrorIs(t, err, extract.ErrFileNotFound)
}

func TestScanInvalidArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.apk")
	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))

	eng, err := NewEngine(config.GetDefaultConfig())
	require.NoError(t, err)

	_, _, err = eng.Scan(context.Background(), &Task{PackagePath: path})
	assert.ErrorIs(t, err, extract.ErrInvalidArchive)
}

func TestScanCancelledContext(t *testing.T) {
	eng, err := NewEngine(config.GetDefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = eng.Scan(ctx, &Task{PackagePath: buildLeakyAPK(t)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Binary.Patterns["bad"] = "("

	_, err := NewEngine(cfg)
	assert.Error(t, err)
}
