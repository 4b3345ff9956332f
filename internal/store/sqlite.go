package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/openscout/scout/internal/model/chat"
)

// snapshotKey is the fixed storage key the serialized conversation list lives
// under, mirroring the single browser-storage record the original UI used.
const snapshotKey = "conversations"

// SQLitePersister stores the conversation list as one serialized row in a
// local SQLite database.
type SQLitePersister struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLitePersister opens (or creates) the database under dataPath.
func NewSQLitePersister(dataPath string) (*SQLitePersister, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "conversations.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	p := &SQLitePersister{db: db}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return p, nil
}

func (p *SQLitePersister) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := p.db.Exec(schema)
	return err
}

// Save overwrites the durable record with the supplied conversation list.
func (p *SQLitePersister) Save(conversations []chat.Conversation) error {
	data, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("marshaling conversations: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	_, err = p.db.Exec(
		`INSERT OR REPLACE INTO snapshots (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		snapshotKey, data,
	)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load reads the durable record back. A missing record is a cold start, not
// an error.
func (p *SQLitePersister) Load() ([]chat.Conversation, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var data []byte
	err := p.db.QueryRow(`SELECT data FROM snapshots WHERE key = ?`, snapshotKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var conversations []chat.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return nil, fmt.Errorf("unmarshaling conversations: %w", err)
	}
	return conversations, nil
}

// Close releases the database handle.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
