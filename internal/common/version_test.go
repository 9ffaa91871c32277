package common

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyVersionLines(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "unknown", "abc123"
	applyVersionLines(bufio.NewScanner(strings.NewReader(`
# generated
version: 1.4.0
build: 2026-01-02-10-00
commit: ffff
malformed line
`)))

	assert.Equal(t, "1.4.0", Version)
	assert.Equal(t, "2026-01-02-10-00", Build)
	assert.Equal(t, "abc123", GitCommit, "ldflags value is kept")
	assert.NotEmpty(t, GetVersionInfo().GoVersion)
}

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsFresh(now.Add(-30*time.Second), time.Minute, now))
	assert.False(t, IsFresh(now.Add(-2*time.Minute), time.Minute, now))
	assert.False(t, IsFresh(time.Time{}, time.Minute, now))
	assert.False(t, IsFresh(now, 0, now))
}
