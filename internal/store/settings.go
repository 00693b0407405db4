package store

import (
	"context"
	"fmt"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// HasPermissions implements health.Source. The grant is a persisted boolean
// the permission flow (outside this app) flips.
func (s *Store) HasPermissions(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'permissions_granted'`,
	).Scan(&value)
	if err != nil {
		return false, fmt.Errorf("read permissions grant: %w", err)
	}
	return value == "1", nil
}

// SetPermissionsGranted persists the capability grant.
func (s *Store) SetPermissionsGranted(granted bool) error {
	value := "0"
	if granted {
		value = "1"
	}
	return s.SetSetting("permissions_granted", value)
}
