package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

const checkInColumns = `id, user_id, habit_id, check_in_date, completed_options, metrics,
	mood, notes, is_makeup, makeup_reason, created_at`

func (s *Store) CreateCheckIn(c models.CheckIn) error {
	options, err := json.Marshal(orEmptySlice(c.CompletedOptions))
	if err != nil {
		return fmt.Errorf("failed to encode completed options: %w", err)
	}
	metrics, err := json.Marshal(orEmptyMap(c.Metrics))
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = s.q.Exec(`
		INSERT INTO check_ins (id, user_id, habit_id, check_in_date, completed_options, metrics,
			mood, notes, is_makeup, makeup_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.UserID, c.HabitID, c.Date, string(options), string(metrics),
		string(c.Mood), c.Notes, c.IsMakeup, c.MakeupReason, c.CreatedAt)
	return mapErr(err)
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func scanCheckIn(row rowScanner) (models.CheckIn, error) {
	var c models.CheckIn
	var options, metrics, mood string

	err := row.Scan(&c.ID, &c.UserID, &c.HabitID, &c.Date, &options, &metrics,
		&mood, &c.Notes, &c.IsMakeup, &c.MakeupReason, &c.CreatedAt)
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
	return c, nil
}

func (s *Store) GetCheckIn(userID, checkInID string) (models.CheckIn, error) {
	row := s.q.QueryRow(`SELECT `+checkInColumns+` FROM check_ins WHERE id = $1 AND user_id = $2`,
		checkInID, userID)
	return scanCheckIn(row)
}

func (s *Store) DeleteCheckIn(userID, checkInID string) error {
	result, err := s.q.Exec(`DELETE FROM check_ins WHERE id = $1 AND user_id = $2`, checkInID, userID)
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
		WHERE habit_id = $1 ORDER BY check_in_date`, habitID)
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
		WHERE user_id = $1 AND habit_id = $2
		ORDER BY check_in_date DESC LIMIT $3`, userID, habitID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

func (s *Store) GetCheckInsByDateRange(userID, habitID, startDate, endDate string) ([]models.CheckIn, error) {
	rows, err := s.q.Query(`
		SELECT `+checkInColumns+` FROM check_ins
		WHERE user_id = $1 AND habit_id = $2 AND check_in_date >= $3 AND check_in_date <= $4
		ORDER BY check_in_date`, userID, habitID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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
		WHERE user_id = $1 AND check_in_date >= $2 AND check_in_date <= $3
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
		WHERE user_id = $1 AND habit_id = $2 AND check_in_date = $3`, userID, habitID, date)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) AddCheckInTotals(userID, habitID string, delta int) error {
	if _, err := s.q.Exec(`
		UPDATE habits SET total_check_ins = total_check_ins + $1 WHERE id = $2`, delta, habitID); err != nil {
		return err
	}
	_, err := s.q.Exec(`
		UPDATE user_profiles SET total_check_ins = total_check_ins + $1 WHERE id = $2`, delta, userID)
	return err
}
