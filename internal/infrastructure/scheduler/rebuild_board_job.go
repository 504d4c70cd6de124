package scheduler

import (
	"context"
	"fmt"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD BOARD JOB
// The board in Redis drifts if increments are lost (Redis restart, failed
// best-effort writes). This job periodically rebuilds it from Postgres.
// ══════════════════════════════════════════════════════════════════════════════

// RebuildBoardJob reloads the reputation board from the source of truth.
type RebuildBoardJob struct {
	reader   user.BoardReader
	board    user.ReputationBoard
	pageSize int
	maxUsers int
}

// NewRebuildBoardJob creates a new RebuildBoardJob.
func NewRebuildBoardJob(reader user.BoardReader, board user.ReputationBoard) *RebuildBoardJob {
	return &RebuildBoardJob{
		reader:   reader,
		board:    board,
		pageSize: 500,
		maxUsers: 10000,
	}
}

// Name implements Job.
func (j *RebuildBoardJob) Name() string {
	return "rebuild_reputation_board"
}

// Description implements Job.
func (j *RebuildBoardJob) Description() string {
	return "Rebuilds the Redis reputation board from Postgres"
}

// Run implements Job. It pages through users by reputation and replaces the
// board in one shot. The board is capped; users past the cap fall off the
// cached ranking but remain queryable from Postgres.
func (j *RebuildBoardJob) Run(ctx context.Context) error {
	entries := make([]user.BoardEntry, 0, j.pageSize)

	for offset := 0; offset < j.maxUsers; offset += j.pageSize {
		page, err := j.reader.ListTopByReputation(ctx, j.pageSize, offset)
		if err != nil {
			return fmt.Errorf("list users by reputation: %w", err)
		}

		entries = append(entries, page...)

		if len(page) < j.pageSize {
			break
		}
	}

	if err := j.board.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuild board: %w", err)
	}

	return nil
}
