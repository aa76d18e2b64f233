package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const metaFileDirectories = "file_directory"

// FileDirectories returns the library's own attachment directories, in
// search order.
func (s *Store) FileDirectories(ctx context.Context) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT value FROM metadata WHERE key = ?", metaFileDirectories).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read file directories: %w", err)
	}
	var dirs []string
	if err := json.Unmarshal([]byte(raw), &dirs); err != nil {
		return nil, fmt.Errorf("decode file directories: %w", err)
	}
	return dirs, nil
}

// SetFileDirectories replaces the library's attachment directories. An empty
// list clears the setting.
func (s *Store) SetFileDirectories(ctx context.Context, dirs []string) error {
	if len(dirs) == 0 {
		if _, err := s.execWithRetry(ctx, "DELETE FROM metadata WHERE key = ?", metaFileDirectories); err != nil {
			return fmt.Errorf("clear file directories: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(dirs)
	if err != nil {
		return fmt.Errorf("encode file directories: %w", err)
	}
	_, err = s.execWithRetry(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaFileDirectories, string(data),
	)
	if err != nil {
		return fmt.Errorf("store file directories: %w", err)
	}
	return nil
}
