package sqlite

import (
	"fmt"
	"time"

	"github.com/sproutapp/sprout/internal/models"
)

// ListAchievements loads the active static catalog, decoding each stored
// (kind, value) pair into its tagged condition variant.
func (s *Store) ListAchievements() ([]models.Achievement, error) {
	rows, err := s.q.Query(`
		SELECT id, name, description, icon, condition_kind, condition_value, is_active
		FROM achievements WHERE is_active = 1 ORDER BY condition_kind, condition_value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		var kind string
		var value int
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &kind, &value, &a.IsActive); err != nil {
			return nil, err
		}
		a.Condition, err = models.ParseUnlockCondition(kind, value)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", a.ID, err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *Store) ListUserAchievements(userID string) ([]models.UserAchievement, error) {
	rows, err := s.q.Query(`
		SELECT id, user_id, achievement_id, habit_id, unlocked_at
		FROM user_achievements WHERE user_id = ? ORDER BY unlocked_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var unlocked []models.UserAchievement
	for rows.Next() {
		var ua models.UserAchievement
		var unlockedAt string
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.HabitID, &unlockedAt); err != nil {
			return nil, err
		}
		ua.UnlockedAt, err = time.Parse(time.RFC3339, unlockedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse unlocked_at for %s: %w", ua.ID, err)
		}
		unlocked = append(unlocked, ua)
	}
	return unlocked, rows.Err()
}

func (s *Store) CountUserAchievements(userID string) (int, error) {
	var count int
	row := s.q.QueryRow(`SELECT count(*) FROM user_achievements WHERE user_id = ?`, userID)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// InsertUserAchievement inserts with conflict-ignore semantics: the unique
// (user_id, achievement_id) constraint, not a prior existence check, is what
// keeps concurrent evaluations from double-unlocking.
func (s *Store) InsertUserAchievement(ua models.UserAchievement) (bool, error) {
	result, err := s.q.Exec(`
		INSERT INTO user_achievements (id, user_id, achievement_id, habit_id, unlocked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		ua.ID, ua.UserID, ua.AchievementID, ua.HabitID, ua.UnlockedAt.Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
