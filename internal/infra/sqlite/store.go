package sqlite

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/papaleguas-app/papaleguas/internal/domain"
)

// ─── Settings Operations ────────────────────────────────────────────────────

// SetSetting upserts a device setting.
func (d *DB) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = datetime('now')
	`, key, value)
	return err
}

// GetSetting reads a device setting; missing keys return fallback.
func (d *DB) GetSetting(key, fallback string) (string, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Theme returns the persisted theme flag ("dark" by default).
func (d *DB) Theme() (string, error) {
	return d.GetSetting("theme", "dark")
}

// SetTheme persists the theme flag.
func (d *DB) SetTheme(theme string) error {
	return d.SetSetting("theme", theme)
}

// ─── Transaction Operations ─────────────────────────────────────────────────

// AppendTransaction stores one history entry. Entries are never updated.
func (d *DB) AppendTransaction(tx domain.Transaction) error {
	var details *string
	if tx.Details != nil {
		raw, err := json.Marshal(tx.Details)
		if err != nil {
			return err
		}
		s := string(raw)
		details = &s
	}
	_, err := d.db.Exec(`
		INSERT INTO transactions (id, type, amount, time, date, week_id, status, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.Type, tx.Amount, tx.Time, tx.Date, tx.WeekID, string(tx.Status), details)
	return err
}

// ListTransactions returns history entries newest first, up to limit.
func (d *DB) ListTransactions(limit int) ([]domain.Transaction, error) {
	rows, err := d.db.Query(`
		SELECT id, type, amount, time, date, week_id, status, details
		FROM transactions ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var status string
		var details sql.NullString
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.Amount, &tx.Time, &tx.Date, &tx.WeekID, &status, &details); err != nil {
			return nil, err
		}
		tx.Status = domain.TransactionStatus(status)
		if details.Valid {
			var det domain.TransactionDetails
			if err := json.Unmarshal([]byte(details.String), &det); err == nil {
				tx.Details = &det
			}
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// ─── Notification Operations ────────────────────────────────────────────────

// InsertNotification adds an inbox entry; existing ids are left untouched so
// seeding is idempotent across restarts.
func (d *DB) InsertNotification(n domain.Notification) error {
	read := 0
	if n.Read {
		read = 1
	}
	_, err := d.db.Exec(`
		INSERT OR IGNORE INTO notifications (id, title, body, type, date, read)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Body, string(n.Type), n.Date.Format(time.RFC3339), read)
	return err
}

// ListNotifications returns the inbox newest first.
func (d *DB) ListNotifications() ([]domain.Notification, error) {
	rows, err := d.db.Query(`
		SELECT id, title, body, type, date, read
		FROM notifications ORDER BY date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ, dateStr string
		var read int
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &typ, &dateStr, &read); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(typ)
		n.Date, _ = time.Parse(time.RFC3339, dateStr)
		n.Read = read == 1
		result = append(result, n)
	}
	return result, rows.Err()
}

// MarkNotificationRead flags one inbox entry as read.
func (d *DB) MarkNotificationRead(id string) error {
	_, err := d.db.Exec(`UPDATE notifications SET read = 1 WHERE id = ?`, id)
	return err
}

// UnreadNotificationCount counts unread inbox entries (the badge number).
func (d *DB) UnreadNotificationCount() (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE read = 0`).Scan(&count)
	return count, err
}
