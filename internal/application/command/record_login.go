package command

import (
	"context"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD LOGIN COMMAND
// Transitions the login streak machine for today. Persistence is guarded by
// the previously observed last-login date, so two sessions logging in at
// once collapse to a single day transition.
// ══════════════════════════════════════════════════════════════════════════════

// RecordLoginCommand identifies the user who logged in.
type RecordLoginCommand struct {
	UserID shared.UserID
}

// Validate validates the command.
func (c RecordLoginCommand) Validate() error {
	if !c.UserID.IsValid() {
		return shared.ErrInvalidUserID
	}
	return nil
}

// RecordLoginResult reports the streak after the login.
type RecordLoginResult struct {
	// CurrentStreak after the login.
	CurrentStreak int

	// LongestStreak after the login.
	LongestStreak int

	// Extended is true when the streak grew by one day.
	Extended bool

	// Broken is true when missed days reset the streak.
	Broken bool
}

// RecordLoginHandler handles RecordLoginCommand.
type RecordLoginHandler struct {
	users user.Repository
	bus   shared.EventPublisher
	log   *logger.Logger
	clock func() time.Time
}

// NewRecordLoginHandler creates a new RecordLoginHandler.
func NewRecordLoginHandler(users user.Repository, bus shared.EventPublisher, log *logger.Logger) *RecordLoginHandler {
	return &RecordLoginHandler{
		users: users,
		bus:   bus,
		log:   log.With(logger.Component("record_login")),
		clock: time.Now,
	}
}

// Handle loads (creating on first sight) the user, runs the streak
// transition, and persists it. A same-day repeat is a no-op. When a
// concurrent login wins the write race, the fresher state is re-read and
// reported; the day is never counted twice.
func (h *RecordLoginHandler) Handle(ctx context.Context, cmd RecordLoginCommand) (*RecordLoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	u, err := h.load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	observed := u.Streak.LastLoginDate
	result := u.RecordLogin(h.clock())

	if !result.Changed {
		return &RecordLoginResult{
			CurrentStreak: result.CurrentStreak,
			LongestStreak: result.LongestStreak,
		}, nil
	}

	if err := h.users.UpdateStreak(ctx, cmd.UserID, u.Streak, observed); err != nil {
		if shared.IsConflict(err) {
			// Another session already recorded today. Report its state.
			fresh, rerr := h.users.GetByID(ctx, cmd.UserID)
			if rerr != nil {
				return nil, rerr
			}
			return &RecordLoginResult{
				CurrentStreak: fresh.Streak.Current,
				LongestStreak: fresh.Streak.Longest,
			}, nil
		}
		return nil, err
	}

	h.log.Info("login recorded",
		logger.UserID(cmd.UserID.String()),
		logger.Int("current_streak", result.CurrentStreak),
		logger.Bool("broken", result.Broken),
	)

	if h.bus != nil {
		event := shared.NewStreakUpdatedEvent(
			cmd.UserID.String(),
			result.CurrentStreak,
			result.LongestStreak,
			result.Extended,
			result.Broken,
		)
		if err := h.bus.Publish(event); err != nil {
			h.log.Warn("failed to publish streak event", logger.Err(err))
		}
	}

	return &RecordLoginResult{
		CurrentStreak: result.CurrentStreak,
		LongestStreak: result.LongestStreak,
		Extended:      result.Extended,
		Broken:        result.Broken,
	}, nil
}

// load fetches the aggregate, creating it on first sight. The create races
// benignly: losing to a concurrent create just means re-reading.
func (h *RecordLoginHandler) load(ctx context.Context, id shared.UserID) (*user.User, error) {
	u, err := h.users.GetByID(ctx, id)
	if err == nil {
		return u, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	u = user.New(id)
	if err := h.users.Create(ctx, u); err != nil {
		if shared.IsConflict(err) {
			return h.users.GetByID(ctx, id)
		}
		return nil, err
	}
	return u, nil
}
