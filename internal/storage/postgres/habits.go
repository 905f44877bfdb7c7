package postgres

import (
	"database/sql"
	"time"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

const habitColumns = `id, user_id, name, category, target_days, total_check_ins,
	current_streak, longest_streak, is_active, created_at, deactivated_at`

func (s *Store) AddHabit(h models.Habit) error {
	var deactivatedAt sql.NullTime
	if h.DeactivatedAt != nil {
		deactivatedAt = sql.NullTime{Time: *h.DeactivatedAt, Valid: true}
	}

	_, err := s.q.Exec(`
		INSERT INTO habits (id, user_id, name, category, target_days, total_check_ins,
			current_streak, longest_streak, is_active, created_at, deactivated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		h.ID, h.UserID, h.Name, h.Category, h.TargetDays, h.TotalCheckIns,
		h.CurrentStreak, h.LongestStreak, h.IsActive, h.CreatedAt, deactivatedAt)
	return mapErr(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var deactivatedAt sql.NullTime

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Category, &h.TargetDays, &h.TotalCheckIns,
		&h.CurrentStreak, &h.LongestStreak, &h.IsActive, &h.CreatedAt, &deactivatedAt)
	if err != nil {
		return models.Habit{}, mapErr(err)
	}
	if deactivatedAt.Valid {
		t := deactivatedAt.Time
		h.DeactivatedAt = &t
	}
	return h, nil
}

func (s *Store) GetHabit(userID, habitID string) (models.Habit, error) {
	row := s.q.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = $1 AND user_id = $2`,
		habitID, userID)
	return scanHabit(row)
}

func (s *Store) GetHabitByName(userID, name string) (models.Habit, error) {
	row := s.q.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE user_id = $1 AND name = $2`,
		userID, name)
	return scanHabit(row)
}

func (s *Store) GetHabits(userID string, includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = $1`
	if !includeInactive {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := s.q.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabitStreaks(habitID string, current, longest int) error {
	result, err := s.q.Exec(`
		UPDATE habits SET current_streak = $1, longest_streak = $2 WHERE id = $3`,
		current, longest, habitID)
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

func (s *Store) DeactivateHabit(userID, habitID string) error {
	result, err := s.q.Exec(`
		UPDATE habits SET is_active = FALSE, deactivated_at = $1
		WHERE id = $2 AND user_id = $3 AND is_active`,
		time.Now().UTC(), habitID, userID)
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

func (s *Store) ReactivateHabit(userID, habitID string) error {
	result, err := s.q.Exec(`
		UPDATE habits SET is_active = TRUE, deactivated_at = NULL
		WHERE id = $1 AND user_id = $2 AND NOT is_active`,
		habitID, userID)
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
