package logger

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return &Logger{
		name:   "test",
		logger: log.New(buf, "", 0),
		logDir: "logs",
		quiet:  true,
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.Info("engine started")
	l.Warning("drawdown at %.0f%%", 12.0)
	l.Error("sink write failed")
	l.Trade("Closed long BTCUSDT")
	l.Critical("breaker tripped")

	out := buf.String()
	assert.Contains(t, out, "[INFO] engine started")
	assert.Contains(t, out, "[WARN] drawdown at 12%")
	assert.Contains(t, out, "[ERROR] sink write failed")
	assert.Contains(t, out, "[TRADE] Closed long BTCUSDT")
	assert.Contains(t, out, "[CRITICAL] breaker tripped")
}

// TestLogEmergencyStopEntry tests that a trip is written at CRITICAL level
// with the full portfolio snapshot
func TestLogEmergencyStopEntry(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.LogEmergencyStop("drawdown 20.00% exceeds limit 15.00%", 8000, -600, 0.20)

	out := buf.String()
	assert.Contains(t, out, "[CRITICAL]")
	assert.Contains(t, out, "EMERGENCY STOP")
	assert.Contains(t, out, "drawdown 20.00% exceeds limit 15.00%")
	assert.Contains(t, out, "$8000.00")
	assert.Contains(t, out, "$-600.00")
	assert.Contains(t, out, "20.00%")
}

func TestGetLogPath(t *testing.T) {
	l := newBufferLogger(&bytes.Buffer{})

	expected := filepath.Join("logs",
		fmt.Sprintf("test_%s.log", time.Now().Format("2006-01-02")))
	assert.Equal(t, expected, l.GetLogPath())
}
