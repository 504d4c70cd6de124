package query

import (
	"context"
	"errors"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/user"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET REPUTATION BOARD QUERY
// Pages the ranked reputation board. Served from the Redis index when it is
// warm, falling back to the Postgres source of truth.
// ══════════════════════════════════════════════════════════════════════════════

// GetReputationBoardQuery contains the paging parameters.
type GetReputationBoardQuery struct {
	// Limit - number of rows (default 20, max 100).
	Limit int

	// Offset for pagination.
	Offset int
}

// Validate checks and normalizes the paging parameters.
func (q *GetReputationBoardQuery) Validate() error {
	if q.Limit < 0 {
		return shared.NewDomainError("query", "GetReputationBoard", shared.ErrValidation, "limit cannot be negative")
	}
	if q.Offset < 0 {
		return shared.NewDomainError("query", "GetReputationBoard", shared.ErrValidation, "offset cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// BoardEntryDTO is one row of the board response.
type BoardEntryDTO struct {
	// Rank position, 1-based.
	Rank int `json:"rank"`

	// UserID of the ranked user.
	UserID string `json:"user_id"`

	// Reputation score.
	Reputation int `json:"reputation"`
}

// GetReputationBoardResult is the board page.
type GetReputationBoardResult struct {
	// Entries in descending reputation order.
	Entries []BoardEntryDTO `json:"entries"`

	// HasMore is true when a full page came back, so another page may exist.
	HasMore bool `json:"has_more"`

	// GeneratedAt is when this page was assembled.
	GeneratedAt time.Time `json:"generated_at"`
}

// GetReputationBoardHandler handles GetReputationBoardQuery.
type GetReputationBoardHandler struct {
	board  user.ReputationBoard
	reader user.BoardReader
	log    *logger.Logger
}

// NewGetReputationBoardHandler creates a new GetReputationBoardHandler.
func NewGetReputationBoardHandler(board user.ReputationBoard, reader user.BoardReader, log *logger.Logger) *GetReputationBoardHandler {
	return &GetReputationBoardHandler{
		board:  board,
		reader: reader,
		log:    log.With(logger.Component("reputation_board_query")),
	}
}

// Handle executes the query, preferring the cached index.
func (h *GetReputationBoardHandler) Handle(ctx context.Context, q GetReputationBoardQuery) (*GetReputationBoardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	entries, err := h.fromCache(ctx, q)
	if err != nil {
		h.log.Debug("board cache miss, reading from database", logger.Err(err))
		entries, err = h.reader.ListTopByReputation(ctx, q.Limit, q.Offset)
		if err != nil {
			return nil, err
		}
	}

	dtos := make([]BoardEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = BoardEntryDTO{
			Rank:       e.Rank,
			UserID:     e.UserID.String(),
			Reputation: e.Reputation,
		}
	}

	return &GetReputationBoardResult{
		Entries:     dtos,
		HasMore:     len(entries) == q.Limit,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (h *GetReputationBoardHandler) fromCache(ctx context.Context, q GetReputationBoardQuery) ([]user.BoardEntry, error) {
	if h.board == nil {
		return nil, errors.New("board cache not available")
	}
	entries, err := h.board.Top(ctx, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 && q.Offset == 0 {
		// An empty first page usually means the index is cold.
		return nil, errors.New("board cache empty")
	}
	return entries, nil
}
