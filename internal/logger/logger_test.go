package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// capture routes log output into a buffer for the duration of the test.
func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"debug", Debug, "[DEBUG] fetched 3 files\n"},
		{"info", Info, "[INFO] fetched 3 files\n"},
		{"warn", Warn, "[WARN] fetched 3 files\n"},
		{"error", Error, "[ERROR] fetched 3 files\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log("fetched %d files", 3)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLevels_WhenQuiet(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("Hidden")

	assert.Empty(t, buf.String())
}

func TestError_AlwaysPrinted(t *testing.T) {
	buf := capture(t, false)

	Error("download %s failed", "a.pdf")

	assert.Equal(t, "[ERROR] download a.pdf failed\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)

	Section("Ranking")

	assert.Equal(t, "\n=== Ranking ===\n", buf.String())
}

func TestStage_LogsDuration(t *testing.T) {
	buf := capture(t, true)
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
	}

	done := Stage("Judging")
	done()

	assert.Equal(t, "\n=== Judging ===\n[DEBUG] Judging took 1.5s\n", buf.String())
}

func TestStage_QuietPrintsNothing(t *testing.T) {
	buf := capture(t, false)

	Stage("Judging")()

	assert.Empty(t, buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
