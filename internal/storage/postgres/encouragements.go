package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

const encouragementColumns = `id, text, category, context, emotion, min_streak, max_streak,
	trigger_day, weight, usage_count, like_count, is_active`

func scanEncouragement(row rowScanner) (models.Encouragement, error) {
	var e models.Encouragement
	var context, emotion string
	var minStreak, maxStreak, triggerDay sql.NullInt64

	err := row.Scan(&e.ID, &e.Text, &e.Category, &context, &emotion, &minStreak, &maxStreak,
		&triggerDay, &e.Weight, &e.UsageCount, &e.LikeCount, &e.IsActive)
	if err != nil {
		return models.Encouragement{}, mapErr(err)
	}

	e.Context = models.EncouragementContext(context)
	e.Emotion = models.Emotion(emotion)
	e.MinStreak = nullableInt(minStreak)
	e.MaxStreak = nullableInt(maxStreak)
	e.TriggerDay = nullableInt(triggerDay)
	return e, nil
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func (s *Store) ListEncouragements(f storage.EncouragementFilter) ([]models.Encouragement, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + encouragementColumns + ` FROM encouragements WHERE is_active AND context = $1`)
	args := []any{string(f.Context)}

	if f.Category != "" {
		args = append(args, f.Category)
		sb.WriteString(fmt.Sprintf(` AND (category = $%d OR category = '')`, len(args)))
	} else {
		sb.WriteString(` AND category = ''`)
	}

	if f.Streak != nil {
		args = append(args, *f.Streak)
		sb.WriteString(fmt.Sprintf(` AND (min_streak IS NULL OR min_streak <= $%d)`, len(args)))
		args = append(args, *f.Streak)
		sb.WriteString(fmt.Sprintf(` AND (max_streak IS NULL OR max_streak >= $%d)`, len(args)))
	}

	if len(f.ExcludeIDs) > 0 {
		marks := make([]string, len(f.ExcludeIDs))
		for i, id := range f.ExcludeIDs {
			args = append(args, id)
			marks[i] = fmt.Sprintf("$%d", len(args))
		}
		sb.WriteString(` AND id NOT IN (` + strings.Join(marks, ", ") + `)`)
	}

	sb.WriteString(` ORDER BY weight DESC, id`)

	rows, err := s.q.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []models.Encouragement
	for rows.Next() {
		e, err := scanEncouragement(rows)
		if err != nil {
			return nil, err
		}
		pool = append(pool, e)
	}
	return pool, rows.Err()
}

func (s *Store) FallbackEncouragement(ctx models.EncouragementContext) (models.Encouragement, error) {
	row := s.q.QueryRow(`
		SELECT `+encouragementColumns+` FROM encouragements
		WHERE is_active AND category = '' AND context = $1
		ORDER BY weight DESC, id LIMIT 1`, string(ctx))
	return scanEncouragement(row)
}

func (s *Store) MilestoneEncouragement(day int) (models.Encouragement, error) {
	row := s.q.QueryRow(`
		SELECT `+encouragementColumns+` FROM encouragements
		WHERE is_active AND context = $1 AND trigger_day = $2
		ORDER BY weight DESC, id LIMIT 1`, string(models.ContextMilestone), day)
	return scanEncouragement(row)
}

func (s *Store) RecentEncouragementIDs(userID string, since time.Time, limit int) ([]string, error) {
	rows, err := s.q.Query(`
		SELECT encouragement_id FROM encouragement_exposures
		WHERE user_id = $1 AND shown_at >= $2
		ORDER BY shown_at DESC LIMIT $3`, userID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) IncrementEncouragementUsage(id string) error {
	_, err := s.q.Exec(`UPDATE encouragements SET usage_count = usage_count + 1 WHERE id = $1`, id)
	return err
}

func (s *Store) IncrementEncouragementLikes(id string) error {
	_, err := s.q.Exec(`UPDATE encouragements SET like_count = like_count + 1 WHERE id = $1`, id)
	return err
}

func (s *Store) RecordExposure(e models.EncouragementExposure) error {
	_, err := s.q.Exec(`
		INSERT INTO encouragement_exposures (id, user_id, encouragement_id, habit_id, shown_at, was_liked)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.EncouragementID, e.HabitID, e.ShownAt, e.WasLiked)
	return mapErr(err)
}

func (s *Store) MarkExposureLiked(userID, encouragementID string) error {
	_, err := s.q.Exec(`
		UPDATE encouragement_exposures SET was_liked = TRUE
		WHERE user_id = $1 AND encouragement_id = $2`, userID, encouragementID)
	return err
}
