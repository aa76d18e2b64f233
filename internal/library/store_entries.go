package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"autolink/internal/bib"
)

const entryColumns = "id, citation_key, entry_type, fields_json, file_field"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*bib.Entry, error) {
	var (
		id         string
		key        string
		entryType  string
		fieldsJSON sql.NullString
		fileField  string
	)
	if err := scanner.Scan(&id, &key, &entryType, &fieldsJSON, &fileField); err != nil {
		return nil, err
	}
	entry := &bib.Entry{
		ID:    id,
		Key:   key,
		Type:  entryType,
		Files: bib.ParseFileField(fileField),
	}
	if fieldsJSON.Valid && fieldsJSON.String != "" && fieldsJSON.String != "{}" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &entry.Fields); err != nil {
			return nil, fmt.Errorf("decode fields for %s: %w", key, err)
		}
	}
	return entry, nil
}

// AddEntry inserts entry, assigning an ID when it has none. The citation key
// must be unique.
func (s *Store) AddEntry(ctx context.Context, entry *bib.Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("citation key is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Type == "" {
		entry.Type = "misc"
	}
	fields, err := encodeFields(entry.Fields)
	if err != nil {
		return err
	}
	timestamp := formatTime(time.Now())
	_, err = s.execWithRetry(ctx,
		`INSERT INTO entries (id, citation_key, entry_type, fields_json, file_field, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Key, entry.Type, fields, entry.FileField(), timestamp, timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, entry.Key)
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// GetEntry fetches an entry by citation key.
func (s *Store) GetEntry(ctx context.Context, key string) (*bib.Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+entryColumns+" FROM entries WHERE citation_key = ?", key)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("entry %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns all entries ordered by citation key.
func (s *Store) ListEntries(ctx context.Context) ([]*bib.Entry, error) {
	return s.queryEntries(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY citation_key")
}

// EntriesByKey returns the entries for keys in the order given. A missing key
// fails with ErrNotFound.
func (s *Store) EntriesByKey(ctx context.Context, keys []string) ([]*bib.Entry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	args := make([]any, len(keys))
	for i, key := range keys {
		args[i] = key
	}
	found, err := s.queryEntries(ctx,
		"SELECT "+entryColumns+" FROM entries WHERE citation_key IN ("+makePlaceholders(len(keys))+")", args...)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*bib.Entry, len(found))
	for _, entry := range found {
		byKey[entry.Key] = entry
	}
	out := make([]*bib.Entry, 0, len(keys))
	for _, key := range keys {
		entry, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("entry %q: %w", key, ErrNotFound)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]*bib.Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []*bib.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpdateFiles replaces the stored file field of entry with its current links.
func (s *Store) UpdateFiles(ctx context.Context, entry *bib.Entry) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE entries SET file_field = ?, updated_at = ? WHERE id = ?",
		entry.FileField(), formatTime(time.Now()), entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update files: %w", err)
	}
	return requireAffected(res, "entry", entry.Key)
}

// DeleteEntry removes an entry by citation key.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	res, err := s.execWithRetry(ctx, "DELETE FROM entries WHERE citation_key = ?", key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireAffected(res, "entry", key)
}

func requireAffected(res sql.Result, kind, name string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", kind, name, ErrNotFound)
	}
	return nil
}

func encodeFields(fields map[string]string) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(data), nil
}
