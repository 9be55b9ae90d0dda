package store

import (
	"database/sql"
	"strconv"
)

// Setting keys. Defaults apply when a key is missing, so a fresh
// database needs no seeding.
const (
	SettingMinutesPerPage = "minutes_per_page"
	SettingTimezone       = "timezone"
)

const defaultMinutesPerPage = 3.0

// SetSetting upserts a key-value pair in the settings table.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetSetting returns the value for a settings key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// MinutesPerPage returns the configured reading pace, falling back to
// the default when unset or unparseable.
func (s *Store) MinutesPerPage() (float64, error) {
	v, err := s.GetSetting(SettingMinutesPerPage)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return defaultMinutesPerPage, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return defaultMinutesPerPage, nil
	}
	return f, nil
}

// Timezone returns the configured IANA zone name, empty meaning UTC.
func (s *Store) Timezone() (string, error) {
	return s.GetSetting(SettingTimezone)
}
