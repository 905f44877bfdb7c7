package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

const checkInColumns = `id, user_id, habit_id, check_in_date, completed_options, metrics,
	mood, notes, is_makeup, makeup_reason, created_at`

// CreateCheckIn inserts a single check-in row. A duplicate (user, habit,
// date) surfaces as storage.ErrConflict via the unique constraint; there is
// deliberately no existence pre-check here.
func (s *Store) CreateCheckIn(c models.CheckIn) error {
	options, err := encodeOptions(c.CompletedOptions)
	if err != nil {
		return err
	}
	metrics, err := encodeMetrics(c.Metrics)
	if err != nil {
		return err
	}

	_, err = s.q.Exec(`
		INSERT INTO check_ins (id, user_id, habit_id, check_in_date, completed_options, metrics,
			mood, notes, is_makeup, makeup_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.HabitID, c.Date, options, metrics,
		string(c.Mood), c.Notes, c.IsMakeup, c.MakeupReason, c.CreatedAt.Format(time.RFC3339))
	return mapErr(err)
}

func encodeOptions(options []string) (string, error) {
	if len(options) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to encode completed options: %w", err)
	}
	return string(b), nil
}

func encodeMetrics(metrics map[string]float64) (string, error) {
	if len(metrics) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(metrics)
	if err != nil {
		return "", fmt.Errorf("failed to encode metrics: %w", err)
	}
	return string(b), nil
}

func scanCheckIn(row rowScanner) (models.CheckIn, error) {
	var c models.CheckIn
	var options, metrics, mood, createdAt string

	err := row.Scan(&c.ID, &c.UserID, &c.HabitID, &c.Date, &options, &metrics,
		&mood, &c.Notes, &c.IsMakeup, &c.MakeupReason, &createdAt)
	if err != nil {
		return models.CheckIn{}, mapErr(err)
	}

	if err := json.Unmarshal([]byte(options), &c.CompletedOptions); err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to decode completed options for check-in %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &c.Metrics); err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to decode metrics for check-in %s: %w", c.ID, err)
	}
	c.Mood = models.Mood(mood)
	c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("failed to parse created_at for check-in %s: %w", c.ID, err)
	}
	return c, nil
}

func (s *Store) GetCheckIn(userID, checkInID string) (models.CheckIn, error) {
	row := s.q.QueryRow(`SELECT `+checkInColumns+` FROM check_ins WHERE id = ? AND user_id = ?`,
		checkInID, userID)
	return scanCheckIn(row)
}

func (s *Store) DeleteCheckIn(userID, checkInID string) error {
	result, err := s.q.Exec(`DELETE FROM check_ins WHERE id = ? AND user_id = ?`, checkInID, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetCheckInDates(habitID string) ([]string, error) {
	rows, err := s.q.Query(`
		SELECT DISTINCT check_in_date FROM check_ins
		WHERE habit_id = ? ORDER BY check_in_date`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) GetCheckIns(userID, habitID string, limit int) ([]models.CheckIn, error) {
	rows, err := s.q.Query(`
		SELECT `+checkInColumns+` FROM check_ins
		WHERE user_id = ? AND habit_id = ?
		ORDER BY check_in_date DESC LIMIT ?`, userID, habitID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

func (s *Store) GetCheckInsByDateRange(userID, habitID, startDate, endDate string) ([]models.CheckIn, error) {
	rows, err := s.q.Query(`
		SELECT `+checkInColumns+` FROM check_ins
		WHERE user_id = ? AND habit_id = ? AND check_in_date >= ? AND check_in_date <= ?
		ORDER BY check_in_date`, userID, habitID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

func collectCheckIns(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.CheckIn, error) {
	var checkIns []models.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

func (s *Store) GetUserCheckInDates(userID, startDate, endDate string) ([]string, error) {
	rows, err := s.q.Query(`
		SELECT check_in_date FROM check_ins
		WHERE user_id = ? AND check_in_date >= ? AND check_in_date <= ?
		ORDER BY check_in_date`, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) HasCheckIn(userID, habitID, date string) (bool, error) {
	var count int
	row := s.q.QueryRow(`
		SELECT count(*) FROM check_ins
		WHERE user_id = ? AND habit_id = ? AND check_in_date = ?`, userID, habitID, date)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddCheckInTotals applies delta to the habit's and the user's lifetime
// check-in counters as atomic increments.
func (s *Store) AddCheckInTotals(userID, habitID string, delta int) error {
	if _, err := s.q.Exec(`
		UPDATE habits SET total_check_ins = total_check_ins + ? WHERE id = ?`, delta, habitID); err != nil {
		return err
	}
	_, err := s.q.Exec(`
		UPDATE user_profiles SET total_check_ins = total_check_ins + ? WHERE id = ?`, delta, userID)
	return err
}
