package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger represents a file logger for risk engine activity
type Logger struct {
	name    string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	logDir  string
	quiet   bool
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARN"
	LogLevelError    LogLevel = "ERROR"
	LogLevelTrade    LogLevel = "TRADE"
	LogLevelCritical LogLevel = "CRITICAL"
)

// NewLogger creates a new file logger for the named engine instance
func NewLogger(name string) (*Logger, error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", name, timestamp)
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		name:    name,
		logFile: file,
		logger:  log.New(file, "", 0),
		logDir:  logDir,
	}

	l.writeSessionHeader()

	return l, nil
}

// NewNopLogger creates a logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{
		name:   "nop",
		logger: log.New(discard{}, "", 0),
		quiet:  true,
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// writeSessionHeader writes a session start header to the log
func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🛡️ RISK ENGINE SESSION STARTED
================================================================================
Engine: %s
Started: %s
================================================================================
`, l.name, time.Now().Format("2006-01-02 15:04:05"))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s", timestamp, level, message)

	// Echo anything above informational to the console
	if l.quiet {
		return
	}
	if level == LogLevelError || level == LogLevelCritical {
		fmt.Printf("🚨 [%s] %s\n", level, message)
	} else if level == LogLevelWarning {
		fmt.Printf("⚠️ [%s] %s\n", level, message)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Trade logs a position lifecycle event
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LogLevelTrade, format, args...)
}

// Critical logs a condition that should alert a human operator
func (l *Logger) Critical(format string, args ...interface{}) {
	l.Log(LogLevelCritical, format, args...)
}

// LogError logs an error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// LogTradeClose logs a realized trade with its PnL
func (l *Logger) LogTradeClose(symbol, side string, size, exitPrice, pnl float64) {
	l.Trade("Closed %s %s - Size: %.6f @ $%.2f, PnL: $%.2f", side, symbol, size, exitPrice, pnl)
}

// LogEmergencyStop logs an emergency stop trip with its snapshot
func (l *Logger) LogEmergencyStop(reason string, portfolioValue, dailyPnL, drawdown float64) {
	l.Critical(`==================== EMERGENCY STOP ====================
🛑 Reason: %s
💼 Portfolio Value: $%.2f
📉 Daily PnL: $%.2f
📉 Drawdown: %.2f%%
All new trades will be rejected until a manual reset.
========================================================`,
		reason, portfolioValue, dailyPnL, drawdown*100)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		footer := fmt.Sprintf(`
================================================================================
🛑 RISK ENGINE SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, timestamp)
		l.logger.Print(footer)

		return l.logFile.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", l.name, timestamp)
	return filepath.Join(l.logDir, filename)
}
