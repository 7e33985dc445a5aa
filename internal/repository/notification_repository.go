package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"cryptoalpha/internal/models"
)

// NotificationRepository - работа с таблицей notifications.
// Персистентная форма fire-and-forget событий ядра: журнал для
// дашборда и для пост-фактум анализа инцидентов.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository создает новый экземпляр репозитория
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create создает новое уведомление
func (r *NotificationRepository) Create(notif *models.Notification) error {
	query := `
		INSERT INTO notifications (timestamp, type, severity, asset, message, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if notif.Timestamp.IsZero() {
		notif.Timestamp = time.Now().UTC()
	}

	var metaJSON []byte
	if notif.Meta != nil {
		var err error
		metaJSON, err = json.Marshal(notif.Meta)
		if err != nil {
			return err
		}
	}

	err := r.db.QueryRow(
		query,
		notif.Timestamp,
		notif.Type,
		notif.Severity,
		notif.Asset,
		notif.Message,
		metaJSON,
	).Scan(&notif.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetRecent возвращает последние N уведомлений
func (r *NotificationRepository) GetRecent(limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, asset, message, meta
		FROM notifications
		ORDER BY timestamp DESC
		LIMIT $1`

	return r.queryNotifications(query, limit)
}

// GetByTypes возвращает уведомления указанных типов
func (r *NotificationRepository) GetByTypes(types []string, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, timestamp, type, severity, asset, message, meta
		FROM notifications
		WHERE type = ANY($1)
		ORDER BY timestamp DESC
		LIMIT $2`

	return r.queryNotifications(query, pq.Array(types), limit)
}

// Count возвращает общее количество уведомлений
func (r *NotificationRepository) Count() (int, error) {
	query := `SELECT COUNT(*) FROM notifications`

	var count int
	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteAll очищает журнал уведомлений
func (r *NotificationRepository) DeleteAll() error {
	query := `DELETE FROM notifications`

	_, err := r.db.Exec(query)
	return err
}

// DeleteOlderThan удаляет уведомления старше указанной даты
func (r *NotificationRepository) DeleteOlderThan(timestamp time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE timestamp < $1`

	result, err := r.db.Exec(query, timestamp)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// queryNotifications выполняет запрос и сканирует список уведомлений
func (r *NotificationRepository) queryNotifications(query string, args ...interface{}) ([]*models.Notification, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		notif := &models.Notification{}
		var metaJSON []byte
		err := rows.Scan(
			&notif.ID,
			&notif.Timestamp,
			&notif.Type,
			&notif.Severity,
			&notif.Asset,
			&notif.Message,
			&metaJSON,
		)
		if err != nil {
			return nil, err
		}

		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &notif.Meta); err != nil {
				return nil, err
			}
		}

		notifications = append(notifications, notif)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
