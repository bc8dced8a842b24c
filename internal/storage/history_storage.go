package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const historyFileName = "history.csv"

var historyHeaders = []string{
	"RunID", "Timestamp", "Source", "RosterSize", "MaxRookiePrice",
	"Status", "ResultCount", "BestScore", "Message",
}

// HistoryEntry records one recommendation run
type HistoryEntry struct {
	RunID          string    `json:"runId"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	RosterSize     int       `json:"rosterSize"`
	MaxRookiePrice int       `json:"maxRookiePrice"`
	Status         string    `json:"status"`
	ResultCount    int       `json:"resultCount"`
	BestScore      float64   `json:"bestScore"`
	Message        string    `json:"message,omitempty"`
}

// HistoryStorage handles persistent storage of recommendation runs
type HistoryStorage struct {
	mu       sync.RWMutex
	filePath string
}

// NewHistoryStorage creates a new history storage instance
func NewHistoryStorage(dataDir string) (*HistoryStorage, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	filePath := filepath.Join(dataDir, historyFileName)
	hs := &HistoryStorage{
		filePath: filePath,
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := hs.createFile(); err != nil {
			return nil, err
		}
	}

	return hs, nil
}

// Snapshot copies the raw CSV to w. Holding the read lock keeps a
// concurrent Add from leaving a half-written row in the copy.
func (hs *HistoryStorage) Snapshot(w io.Writer) error {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	file, err := os.Open(hs.filePath)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(w, file); err != nil {
		return fmt.Errorf("failed to copy history file: %w", err)
	}
	return nil
}

// createFile creates the CSV file with headers
func (hs *HistoryStorage) createFile() error {
	file, err := os.Create(hs.filePath)
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(historyHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	writer.Flush()

	return writer.Error()
}

// Add appends an entry, assigning a run id and timestamp when missing
func (hs *HistoryStorage) Add(entry *HistoryEntry) error {
	if entry.RunID == "" {
		entry.RunID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	hs.mu.Lock()
	defer hs.mu.Unlock()

	file, err := os.OpenFile(hs.filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	record := []string{
		entry.RunID,
		entry.Timestamp.Format(time.RFC3339),
		entry.Source,
		strconv.Itoa(entry.RosterSize),
		strconv.Itoa(entry.MaxRookiePrice),
		entry.Status,
		strconv.Itoa(entry.ResultCount),
		strconv.FormatFloat(entry.BestScore, 'f', 2, 64),
		entry.Message,
	}

	if err := writer.Write(record); err != nil {
		return fmt.Errorf("failed to write history record: %w", err)
	}
	writer.Flush()

	return writer.Error()
}

// Recent returns up to limit entries, newest first
func (hs *HistoryStorage) Recent(limit int) ([]HistoryEntry, error) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	file, err := os.Open(hs.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	entries := []HistoryEntry{}
	// Walk backwards, skipping the header row
	for i := len(records) - 1; i >= 1 && (limit <= 0 || len(entries) < limit); i-- {
		record := records[i]
		if len(record) < len(historyHeaders) {
			continue
		}

		ts, err := time.Parse(time.RFC3339, record[1])
		if err != nil {
			continue
		}
		rosterSize, _ := strconv.Atoi(record[3])
		maxPrice, _ := strconv.Atoi(record[4])
		count, _ := strconv.Atoi(record[6])
		best, _ := strconv.ParseFloat(record[7], 64)

		entries = append(entries, HistoryEntry{
			RunID:          record[0],
			Timestamp:      ts,
			Source:         record[2],
			RosterSize:     rosterSize,
			MaxRookiePrice: maxPrice,
			Status:         record[5],
			ResultCount:    count,
			BestScore:      best,
			Message:        record[8],
		})
	}

	return entries, nil
}
