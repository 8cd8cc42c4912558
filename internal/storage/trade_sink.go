package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/risk-engine/internal/position"
)

// FileTradeSink persists closed trade records to an append-only JSONL file.
// It implements the engine's TradeSink contract; callers treat failures as
// non-fatal and the in-memory close always completes first.
type FileTradeSink struct {
	mu       sync.Mutex
	filePath string
}

// NewFileTradeSink creates a file-backed trade sink
func NewFileTradeSink(filePath string) (*FileTradeSink, error) {
	if filePath == "" {
		filePath = "trade_history.jsonl"
	}

	// Ensure directory exists
	dir := filepath.Dir(filePath)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create trade history directory: %w", err)
		}
	}

	return &FileTradeSink{filePath: filePath}, nil
}

// StoreTrade appends a single trade record
func (s *FileTradeSink) StoreTrade(record position.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal trade record: %w", err)
	}

	file, err := os.OpenFile(s.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trade history file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append trade record: %w", err)
	}

	return nil
}

// LoadTrades reads all persisted trade records, oldest first. Corrupt lines
// are skipped rather than failing the whole load.
func (s *FileTradeSink) LoadTrades() ([]position.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open trade history file: %w", err)
	}
	defer file.Close()

	var records []position.TradeRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record position.TradeRecord
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read trade history file: %w", err)
	}

	return records, nil
}

// Path returns the sink's file path
func (s *FileTradeSink) Path() string {
	return s.filePath
}
