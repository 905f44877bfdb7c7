package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

const habitColumns = `id, user_id, name, category, target_days, total_check_ins,
	current_streak, longest_streak, is_active, created_at, deactivated_at`

func (s *Store) AddHabit(h models.Habit) error {
	var deactivatedAt sql.NullString
	if h.DeactivatedAt != nil {
		deactivatedAt = sql.NullString{String: h.DeactivatedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.q.Exec(`
		INSERT INTO habits (id, user_id, name, category, target_days, total_check_ins,
			current_streak, longest_streak, is_active, created_at, deactivated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Category, h.TargetDays, h.TotalCheckIns,
		h.CurrentStreak, h.LongestStreak, h.IsActive, h.CreatedAt.Format(time.RFC3339), deactivatedAt)
	return mapErr(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	var deactivatedAt sql.NullString

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Category, &h.TargetDays, &h.TotalCheckIns,
		&h.CurrentStreak, &h.LongestStreak, &h.IsActive, &createdAt, &deactivatedAt)
	if err != nil {
		return models.Habit{}, mapErr(err)
	}

	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if deactivatedAt.Valid {
		t, err := time.Parse(time.RFC3339, deactivatedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse deactivated_at: %w", err)
		}
		h.DeactivatedAt = &t
	}
	return h, nil
}

func (s *Store) GetHabit(userID, habitID string) (models.Habit, error) {
	row := s.q.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`,
		habitID, userID)
	return scanHabit(row)
}

func (s *Store) GetHabitByName(userID, name string) (models.Habit, error) {
	row := s.q.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE user_id = ? AND name = ?`,
		userID, name)
	return scanHabit(row)
}

func (s *Store) GetHabits(userID string, includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE user_id = ?`
	if !includeInactive {
		query += ` AND is_active = 1`
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
		UPDATE habits SET current_streak = ?, longest_streak = ? WHERE id = ?`,
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
		UPDATE habits SET is_active = 0, deactivated_at = ?
		WHERE id = ? AND user_id = ? AND is_active = 1`,
		time.Now().UTC().Format(time.RFC3339), habitID, userID)
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
		UPDATE habits SET is_active = 1, deactivated_at = NULL
		WHERE id = ? AND user_id = ? AND is_active = 0`,
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
