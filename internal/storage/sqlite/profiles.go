package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

func (s *Store) CreateProfile(p models.UserProfile) error {
	_, err := s.q.Exec(`
		INSERT INTO user_profiles (id, email, display_name, plan, max_active_habits, makeup_count,
			total_check_ins, current_streak, longest_streak, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.DisplayName, string(p.Plan), p.MaxActiveHabits, p.MakeupCount,
		p.TotalCheckIns, p.CurrentStreak, p.LongestStreak, p.CreatedAt.Format(time.RFC3339))
	return mapErr(err)
}

const profileColumns = `id, email, display_name, plan, max_active_habits, makeup_count,
	total_check_ins, current_streak, longest_streak, created_at`

func scanProfile(row *sql.Row) (models.UserProfile, error) {
	var p models.UserProfile
	var plan, createdAt string

	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &plan, &p.MaxActiveHabits, &p.MakeupCount,
		&p.TotalCheckIns, &p.CurrentStreak, &p.LongestStreak, &createdAt)
	if err != nil {
		return models.UserProfile{}, mapErr(err)
	}

	p.Plan = models.Plan(plan)
	p.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	return p, nil
}

func (s *Store) GetProfile(userID string) (models.UserProfile, error) {
	row := s.q.QueryRow(`SELECT `+profileColumns+` FROM user_profiles WHERE id = ?`, userID)
	return scanProfile(row)
}

func (s *Store) GetProfileByEmail(email string) (models.UserProfile, error) {
	row := s.q.QueryRow(`SELECT `+profileColumns+` FROM user_profiles WHERE email = ?`, email)
	return scanProfile(row)
}

func (s *Store) UpdateProfileStreaks(userID string, current, longest int) error {
	result, err := s.q.Exec(`
		UPDATE user_profiles SET current_streak = ?, longest_streak = ? WHERE id = ?`,
		current, longest, userID)
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

// DecrementMakeupCount consumes one makeup allowance. The guard in the WHERE
// clause makes the decrement atomic; zero rows affected means the allowance
// is exhausted.
func (s *Store) DecrementMakeupCount(userID string) (bool, error) {
	result, err := s.q.Exec(`
		UPDATE user_profiles SET makeup_count = makeup_count - 1
		WHERE id = ? AND makeup_count > 0`, userID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
