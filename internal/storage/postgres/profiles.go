package postgres

import (
	"database/sql"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

const profileColumns = `id, email, display_name, plan, max_active_habits, makeup_count,
	total_check_ins, current_streak, longest_streak, created_at`

func (s *Store) CreateProfile(p models.UserProfile) error {
	_, err := s.q.Exec(`
		INSERT INTO user_profiles (id, email, display_name, plan, max_active_habits, makeup_count,
			total_check_ins, current_streak, longest_streak, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Email, p.DisplayName, string(p.Plan), p.MaxActiveHabits, p.MakeupCount,
		p.TotalCheckIns, p.CurrentStreak, p.LongestStreak, p.CreatedAt)
	return mapErr(err)
}

func scanProfile(row *sql.Row) (models.UserProfile, error) {
	var p models.UserProfile
	var plan string

	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &plan, &p.MaxActiveHabits, &p.MakeupCount,
		&p.TotalCheckIns, &p.CurrentStreak, &p.LongestStreak, &p.CreatedAt)
	if err != nil {
		return models.UserProfile{}, mapErr(err)
	}
	p.Plan = models.Plan(plan)
	return p, nil
}

func (s *Store) GetProfile(userID string) (models.UserProfile, error) {
	row := s.q.QueryRow(`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, userID)
	return scanProfile(row)
}

func (s *Store) GetProfileByEmail(email string) (models.UserProfile, error) {
	row := s.q.QueryRow(`SELECT `+profileColumns+` FROM user_profiles WHERE email = $1`, email)
	return scanProfile(row)
}

func (s *Store) UpdateProfileStreaks(userID string, current, longest int) error {
	result, err := s.q.Exec(`
		UPDATE user_profiles SET current_streak = $1, longest_streak = $2 WHERE id = $3`,
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

func (s *Store) DecrementMakeupCount(userID string) (bool, error) {
	result, err := s.q.Exec(`
		UPDATE user_profiles SET makeup_count = makeup_count - 1
		WHERE id = $1 AND makeup_count > 0`, userID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
