package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func resetState() {
	CloseAll()
	loggersMu.Lock()
	loggers = make(map[Category]*Logger)
	loggersMu.Unlock()
	logsDir = ""
	config = loggingConfig{}
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	resetState()
	categories := map[string]bool{
		"boot": true, "normalize": true, "categorize": true,
		"store": true, "index": true, "query": true, "mcp": true,
	}
	require.NoError(t, Initialize(tempDir, "debug", false, categories))

	for cat := range categories {
		c := Category(cat)
		require.True(t, IsCategoryEnabled(c), "category %s should be enabled", cat)
		logger := Get(c)
		logger.Info("info %s", cat)
		logger.Debug("debug %s", cat)
		logger.Warn("warn %s", cat)
		logger.Error("error %s", cat)
	}

	Normalize("convenience normalize log")
	Categorize("convenience categorize log")
	Store("convenience store log")
	Index("convenience index log")
	Query("convenience query log")
	MCP("convenience mcp log")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, err := os.ReadDir(logsPath)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for cat := range categories {
		found := false
		for _, e := range entries {
			if strings.Contains(e.Name(), cat+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, e.Name()))
				require.NoError(t, err)
				require.NotEmpty(t, content)
			}
		}
		require.True(t, found, "no log file for category %s", cat)
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	resetState()
	require.NoError(t, Initialize(tempDir, "debug", false, map[string]bool{
		"boot": true, "store": true, "query": false, "normalize": false,
	}))

	require.True(t, IsCategoryEnabled(CategoryBoot))
	require.True(t, IsCategoryEnabled(CategoryStore))
	require.False(t, IsCategoryEnabled(CategoryQuery))
	require.False(t, IsCategoryEnabled(CategoryNormalize))
	// Not listed -> default enabled.
	require.True(t, IsCategoryEnabled(CategoryIndex))

	Boot("should be logged")
	Query("should not be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, _ := os.ReadDir(logsPath)

	hasBoot, hasQuery := false, false
	for _, e := range entries {
		if strings.Contains(e.Name(), "boot") {
			hasBoot = true
		}
		if strings.Contains(e.Name(), "query") {
			hasQuery = true
		}
	}
	require.True(t, hasBoot)
	require.False(t, hasQuery)
}

func TestTimerLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_timer")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	resetState()
	require.NoError(t, Initialize(tempDir, "debug", false, nil))

	timer := StartTimer(CategoryStore, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	require.Greater(t, elapsed, time.Duration(0))

	CloseAll()
}
