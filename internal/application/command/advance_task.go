package command

import (
	"context"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
	"github.com/devoverflow-hub/devoverflow-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADVANCE TASK COMMAND
// Moves today's progress row for one daily task. The row key is derived
// from the clock (user, task, day) so each midnight starts a fresh row
// implicitly; no reset job ever runs.
// ══════════════════════════════════════════════════════════════════════════════

// AdvanceTaskCommand carries one progress increment for a daily task.
type AdvanceTaskCommand struct {
	// UserID performing the action.
	UserID shared.UserID

	// TaskType names the task, e.g. "cast_votes".
	TaskType progression.TaskType

	// Increment to add to today's progress. Must be positive.
	Increment int
}

// Validate validates the command.
func (c AdvanceTaskCommand) Validate() error {
	if !c.UserID.IsValid() {
		return shared.ErrInvalidUserID
	}
	if c.TaskType == "" {
		return shared.NewDomainError("dailytask", "AdvanceTask", shared.ErrInvalidInput, "task type is required")
	}
	if c.Increment <= 0 {
		return shared.NewDomainError("dailytask", "AdvanceTask", shared.ErrInvalidInput, "increment must be positive")
	}
	return nil
}

// AdvanceTaskResult reports today's row after the increment.
type AdvanceTaskResult struct {
	// TaskID of the advanced task.
	TaskID string

	// Progress after the increment. Keeps counting past the target; only
	// the reward is capped.
	Progress int

	// Target of the task.
	Target int

	// Completed is true when the row is (or already was) done for today.
	Completed bool

	// CompletedNow is true when this call crossed the target.
	CompletedNow bool

	// XPAwarded is the reward granted by this call, zero unless CompletedNow.
	XPAwarded int
}

// AdvanceTaskHandler handles AdvanceTaskCommand.
type AdvanceTaskHandler struct {
	tasks   progression.TaskProgressRepository
	catalog *progression.Catalog
	bus     shared.EventPublisher
	log     *logger.Logger
	clock   func() time.Time
}

// NewAdvanceTaskHandler creates a new AdvanceTaskHandler.
func NewAdvanceTaskHandler(
	tasks progression.TaskProgressRepository,
	catalog *progression.Catalog,
	bus shared.EventPublisher,
	log *logger.Logger,
) *AdvanceTaskHandler {
	return &AdvanceTaskHandler{
		tasks:   tasks,
		catalog: catalog,
		bus:     bus,
		log:     log.With(logger.Component("advance_task")),
		clock:   time.Now,
	}
}

// Handle resolves the task definition, advances today's row, and publishes
// completion events when this call crossed the target. Unknown task types
// return shared.ErrTaskNotFound.
func (h *AdvanceTaskHandler) Handle(ctx context.Context, cmd AdvanceTaskCommand) (*AdvanceTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	task, ok := h.catalog.TaskByType(cmd.TaskType)
	if !ok {
		return nil, shared.ErrTaskNotFound
	}

	day := timeutil.DayFloor(h.clock())
	row, grant, err := h.tasks.Advance(ctx, cmd.UserID, task, day, cmd.Increment)
	if err != nil {
		return nil, err
	}

	result := &AdvanceTaskResult{
		TaskID:    task.ID,
		Progress:  row.Progress,
		Target:    task.Target,
		Completed: row.Completed,
	}

	if grant != nil {
		result.CompletedNow = true
		result.XPAwarded = grant.Amount

		h.log.Info("daily task completed",
			logger.UserID(cmd.UserID.String()),
			logger.TaskType(string(task.TaskType)),
			logger.XPAmount(grant.Amount),
		)

		h.publishCompletion(cmd.UserID, task, day, grant)
	}

	return result, nil
}

func (h *AdvanceTaskHandler) publishCompletion(userID shared.UserID, task progression.DailyTask, day time.Time, grant *progression.XPGrant) {
	if h.bus == nil {
		return
	}

	if err := h.bus.Publish(shared.NewTaskCompletedEvent(userID.String(), string(task.TaskType), day, grant.Amount)); err != nil {
		h.log.Warn("failed to publish task event", logger.Err(err))
	}
	if grant.Amount == 0 {
		return
	}
	if err := h.bus.Publish(shared.NewXPAwardedEvent(userID.String(), grant.Amount, grant.NewTotal, "daily_task:"+string(task.TaskType))); err != nil {
		h.log.Warn("failed to publish xp event", logger.Err(err))
	}

	oldLevel := progression.Level(shared.XP(grant.NewTotal - grant.Amount))
	newLevel := progression.Level(shared.XP(grant.NewTotal))
	if newLevel > oldLevel {
		if err := h.bus.Publish(shared.NewLevelUpEvent(userID.String(), oldLevel, newLevel)); err != nil {
			h.log.Warn("failed to publish level-up event", logger.Err(err))
		}
	}
}
