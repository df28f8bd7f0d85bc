// Package templates persists saved test requests in the local database.
package templates

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/apiconsole/internal/config"
	"github.com/studiowebux/apiconsole/internal/migrations"
	"github.com/studiowebux/apiconsole/internal/request"
	"github.com/studiowebux/apiconsole/internal/types"
)

// StorageKey is the local_storage key holding the template array
const StorageKey = "requestTemplates"

// Store handles request template persistence.
// All templates live in one JSON array under StorageKey.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the database at dbPath; ":memory:" is accepted
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Name builds the display name of a request ("METHOD url")
func Name(method types.HTTPMethod, url string) string {
	return fmt.Sprintf("%s %s", method, url)
}

// Save stores draft under a fresh ID and returns it. Authorization headers
// are dropped. A template with the same name is replaced.
func (s *Store) Save(draft types.RequestTemplate) (types.RequestTemplate, error) {
	if strings.TrimSpace(draft.URL) == "" {
		return types.RequestTemplate{}, &types.ValidationError{Field: "url", Message: "URL is required"}
	}

	tmpl := types.RequestTemplate{
		ID:          uuid.NewString(),
		Name:        Name(draft.Method, draft.URL),
		Method:      draft.Method,
		URL:         draft.URL,
		Headers:     request.StripCredentials(draft.Headers),
		Body:        draft.Body,
		Environment: draft.Environment,
		Timestamp:   s.now().UTC(),
	}

	list, err := s.List()
	if err != nil {
		return types.RequestTemplate{}, err
	}

	kept := list[:0]
	for _, existing := range list {
		if existing.Name != tmpl.Name {
			kept = append(kept, existing)
		}
	}
	kept = append(kept, tmpl)

	if err := s.write(kept); err != nil {
		return types.RequestTemplate{}, err
	}
	return tmpl, nil
}

// List returns all templates, newest first
func (s *Store) List() ([]types.RequestTemplate, error) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", StorageKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return []types.RequestTemplate{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	var list []types.RequestTemplate
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

// Get looks a template up by ID
func (s *Store) Get(id string) (types.RequestTemplate, error) {
	list, err := s.List()
	if err != nil {
		return types.RequestTemplate{}, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, nil
		}
	}
	return types.RequestTemplate{}, fmt.Errorf("template not found: %s", id)
}

// Delete removes a template by ID
func (s *Store) Delete(id string) error {
	list, err := s.List()
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, t := range list {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("template not found: %s", id)
	}
	return s.write(kept)
}

func (s *Store) write(list []types.RequestTemplate) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO local_storage (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, StorageKey, string(data))
	if err != nil {
		return fmt.Errorf("failed to save templates: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
