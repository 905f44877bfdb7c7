package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/constants"
	"github.com/sproutapp/sprout/internal/logger"
	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

// SelectionRequest narrows the encouragement pool for one draw. Context
// defaults to daily; an empty Category restricts the pool to
// category-agnostic messages; a nil Streak skips streak-range filtering.
type SelectionRequest struct {
	UserID   string
	HabitID  string
	Context  models.EncouragementContext
	Category string
	Streak   *int
}

// SelectEncouragement draws one message from the active pool, weighted by
// each message's weight. Messages shown to the user within the last seven
// days are excluded; when that empties the pool, the highest-weight
// category-agnostic message for the context is returned instead. Every
// selection is recorded as an exposure.
func (e *Engine) SelectEncouragement(req SelectionRequest) (*models.Encouragement, error) {
	ctx := req.Context
	if ctx == "" {
		ctx = models.ContextDaily
	}

	now := e.now()
	since := now.AddDate(0, 0, -constants.ExposureWindowDays)
	recent, err := e.store.RecentEncouragementIDs(req.UserID, since, constants.ExposureHistoryLimit)
	if err != nil {
		return nil, err
	}

	pool, err := e.store.ListEncouragements(storage.EncouragementFilter{
		Context:    ctx,
		Category:   req.Category,
		Streak:     req.Streak,
		ExcludeIDs: recent,
	})
	if err != nil {
		return nil, err
	}

	var chosen models.Encouragement
	if len(pool) > 0 {
		chosen = e.weightedDraw(pool)
	} else {
		chosen, err = e.store.FallbackEncouragement(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoEncouragementAvailable
		}
		if err != nil {
			return nil, err
		}
	}

	if err := e.recordSelection(req.UserID, req.HabitID, chosen.ID, now); err != nil {
		return nil, err
	}
	return &chosen, nil
}

// weightedDraw picks one message with probability proportional to its
// weight. Non-positive weights count as one so every candidate stays
// reachable.
func (e *Engine) weightedDraw(pool []models.Encouragement) models.Encouragement {
	total := 0
	for _, c := range pool {
		total += weightOf(c)
	}
	pick := e.rng.Intn(total)
	for _, c := range pool {
		pick -= weightOf(c)
		if pick < 0 {
			return c
		}
	}
	return pool[len(pool)-1]
}

func weightOf(c models.Encouragement) int {
	if c.Weight < 1 {
		return 1
	}
	return c.Weight
}

// recordSelection writes the exposure row and bumps the usage counter. The
// exposure write drives the exclusion window, so its failure fails the
// selection; the counter is a popularity signal only and a failed bump is
// logged and dropped.
func (e *Engine) recordSelection(userID, habitID, encouragementID string, now time.Time) error {
	if err := e.store.RecordExposure(models.EncouragementExposure{
		ID:              uuid.New().String(),
		UserID:          userID,
		EncouragementID: encouragementID,
		HabitID:         habitID,
		ShownAt:         now.UTC(),
	}); err != nil {
		return err
	}
	if err := e.store.IncrementEncouragementUsage(encouragementID); err != nil {
		logger.Warn("failed to bump encouragement usage", "id", encouragementID, "error", err)
	}
	return nil
}

// MilestoneEncouragement returns the message for an exact milestone day
// (3, 7, 21, ...), falling back to a streak-context weighted selection when
// no milestone message matches.
func (e *Engine) MilestoneEncouragement(userID, habitID string, day int) (*models.Encouragement, error) {
	chosen, err := e.store.MilestoneEncouragement(day)
	if errors.Is(err, storage.ErrNotFound) {
		return e.SelectEncouragement(SelectionRequest{
			UserID:  userID,
			HabitID: habitID,
			Context: models.ContextStreak,
			Streak:  &day,
		})
	}
	if err != nil {
		return nil, err
	}
	if err := e.recordSelection(userID, habitID, chosen.ID, e.now()); err != nil {
		return nil, err
	}
	return &chosen, nil
}

// LikeEncouragement records that the user liked a message: the message's
// like counter goes up and the latest exposure is marked liked.
func (e *Engine) LikeEncouragement(userID, encouragementID string) error {
	if err := e.store.IncrementEncouragementLikes(encouragementID); err != nil {
		return err
	}
	return e.store.MarkExposureLiked(userID, encouragementID)
}
