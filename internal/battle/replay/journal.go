// Package replay records bus emissions into a journal that can be saved,
// loaded, checksummed and re-run against a freshly built bus.
package replay

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magefree/battle-sim-go/internal/battle/events"
)

const journalVersion = 1

// Entry is one recorded emission.
type Entry struct {
	Seq   int
	Depth int // 0 for emissions made by the driver, >0 for nested ones
	Kind  events.Kind
	// RNGState is the generator state right before the first handler ran.
	RNGState []byte
	Input    events.Payload
	Output   events.Payload
	Err      string
}

// Journal is the ordered list of emissions of one battle.
type Journal struct {
	BattleID     string
	Seed         uint64
	MaxHP        int // 0 when the producer did not record it
	Entries      []*Entry
	CurrentIndex int
	mu           sync.RWMutex
}

// NewJournal creates an empty journal. An empty battleID gets a fresh one.
func NewJournal(battleID string, seed uint64) *Journal {
	if battleID == "" {
		battleID = uuid.NewString()
	}
	return &Journal{
		BattleID: battleID,
		Seed:     seed,
		Entries:  make([]*Entry, 0),
	}
}

// Record appends entry, assigning its sequence number.
func (j *Journal) Record(entry *Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry.Seq = len(j.Entries)
	j.Entries = append(j.Entries, entry)
}

// Size returns the number of recorded entries.
func (j *Journal) Size() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return len(j.Entries)
}

// EntryAt returns the entry at index, or nil when out of range.
func (j *Journal) EntryAt(index int) *Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if index >= 0 && index < len(j.Entries) {
		return j.Entries[index]
	}
	return nil
}

// Start rewinds the cursor.
func (j *Journal) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.CurrentIndex = 0
}

// Next returns the entry under the cursor and advances it.
func (j *Journal) Next() *Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.CurrentIndex < len(j.Entries) {
		entry := j.Entries[j.CurrentIndex]
		j.CurrentIndex++
		return entry
	}
	return nil
}

// Previous steps the cursor back and returns the entry there.
func (j *Journal) Previous() *Entry {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.CurrentIndex > 0 {
		j.CurrentIndex--
		return j.Entries[j.CurrentIndex]
	}
	return nil
}

// SaveToFile writes the journal to <directory>/<battle id>.replay as a
// gzipped gob stream: a metadata header followed by the entries.
func (j *Journal) SaveToFile(directory string) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(journalPath(directory, j.BattleID))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	encoder := gob.NewEncoder(gzipWriter)

	metadata := journalMetadata{
		BattleID:   j.BattleID,
		Seed:       j.Seed,
		MaxHP:      j.MaxHP,
		Timestamp:  time.Now(),
		Version:    journalVersion,
		EntryCount: len(j.Entries),
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	for i, entry := range j.Entries {
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadFromFile reads a journal written by SaveToFile.
func LoadFromFile(directory, battleID string) (*Journal, error) {
	file, err := os.Open(journalPath(directory, battleID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gzipReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	decoder := gob.NewDecoder(gzipReader)

	var metadata journalMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != journalVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, metadata.Version)
	}

	journal := NewJournal(metadata.BattleID, metadata.Seed)
	journal.MaxHP = metadata.MaxHP
	for i := 0; i < metadata.EntryCount; i++ {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("failed to decode entry %d: %w", i, err)
		}
		journal.Entries = append(journal.Entries, &entry)
	}

	return journal, nil
}

type journalMetadata struct {
	BattleID   string
	Seed       uint64
	MaxHP      int
	Timestamp  time.Time
	Version    int
	EntryCount int
}

func journalPath(directory, battleID string) string {
	return filepath.Join(directory, fmt.Sprintf("%s.replay", battleID))
}
