package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/application/command"
	"github.com/devoverflow-hub/devoverflow-core/internal/application/query"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/progression"
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
	"github.com/devoverflow-hub/devoverflow-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":    "DevOverflow Reputation & Progression API",
		"version": "v1",
		"endpoints": map[string]string{
			"health": "/healthz",
			"votes":  "/api/v1/votes",
			"tasks":  "/api/v1/tasks/advance",
			"logins": "/api/v1/logins",
			"stats":  "/api/v1/users/{id}/stats",
			"board":  "/api/v1/reputation/board",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// healthReport is the /healthz response body.
type healthReport struct {
	Status    string    `json:"status"`
	Postgres  string    `json:"postgres"`
	Redis     string    `json:"redis"`
	Uptime    string    `json:"uptime"`
	CheckedAt time.Time `json:"checked_at"`
}

// handleHealth pings the backing stores. Postgres down means unhealthy;
// Redis down is reported but not fatal, every Redis structure is a cache.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := healthReport{
		Status:    "healthy",
		Postgres:  "ok",
		Redis:     "ok",
		Uptime:    s.Uptime().String(),
		CheckedAt: time.Now().UTC(),
	}

	status := http.StatusOK

	if s.deps.Postgres != nil {
		if err := s.deps.Postgres.Ping(r.Context()); err != nil {
			report.Status = "unhealthy"
			report.Postgres = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(r.Context()); err != nil {
			report.Redis = err.Error()
			if report.Status == "healthy" {
				report.Status = "degraded"
			}
		}
	}

	writeJSON(w, status, report)
}

// ══════════════════════════════════════════════════════════════════════════════
// VOTE HANDLER
// ══════════════════════════════════════════════════════════════════════════════

type castVoteRequest struct {
	VoterID    string `json:"voter_id"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Value      int    `json:"value"`
}

type castVoteResponse struct {
	Action           string `json:"action"`
	VoteDelta        int    `json:"vote_delta"`
	TargetVotes      int    `json:"target_votes"`
	AuthorReputation int    `json:"author_reputation"`
}

// handleCastVote handles POST /api/v1/votes
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req castVoteRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.CastVoteCommand{
		VoterID:    shared.UserID(req.VoterID),
		TargetType: shared.TargetType(req.TargetType),
		TargetID:   shared.TargetID(req.TargetID),
		Value:      shared.VoteValue(req.Value),
	}

	result, err := s.deps.CastVoteHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logError(r, "cast vote failed", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, castVoteResponse{
		Action:           string(result.Action),
		VoteDelta:        result.VoteDelta,
		TargetVotes:      result.TargetVotes,
		AuthorReputation: result.AuthorReputation,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// DAILY TASK HANDLER
// ══════════════════════════════════════════════════════════════════════════════

type advanceTaskRequest struct {
	UserID    string `json:"user_id"`
	TaskType  string `json:"task_type"`
	Increment int    `json:"increment"`
}

type advanceTaskResponse struct {
	TaskID       string `json:"task_id"`
	Progress     int    `json:"progress"`
	Target       int    `json:"target"`
	Completed    bool   `json:"completed"`
	CompletedNow bool   `json:"completed_now"`
	XPAwarded    int    `json:"xp_awarded"`
}

// handleAdvanceTask handles POST /api/v1/tasks/advance
func (s *Server) handleAdvanceTask(w http.ResponseWriter, r *http.Request) {
	var req advanceTaskRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if req.Increment == 0 {
		req.Increment = 1
	}

	cmd := command.AdvanceTaskCommand{
		UserID:    shared.UserID(req.UserID),
		TaskType:  progression.TaskType(req.TaskType),
		Increment: req.Increment,
	}

	result, err := s.deps.AdvanceTaskHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logError(r, "advance task failed", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, advanceTaskResponse{
		TaskID:       result.TaskID,
		Progress:     result.Progress,
		Target:       result.Target,
		Completed:    result.Completed,
		CompletedNow: result.CompletedNow,
		XPAwarded:    result.XPAwarded,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN HANDLER
// ══════════════════════════════════════════════════════════════════════════════

type recordLoginRequest struct {
	UserID string `json:"user_id"`
}

type recordLoginResponse struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	Extended      bool `json:"extended"`
	Broken        bool `json:"broken"`
}

// handleRecordLogin handles POST /api/v1/logins
func (s *Server) handleRecordLogin(w http.ResponseWriter, r *http.Request) {
	var req recordLoginRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordLoginCommand{UserID: shared.UserID(req.UserID)}

	result, err := s.deps.RecordLoginHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logError(r, "record login failed", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordLoginResponse{
		CurrentStreak: result.CurrentStreak,
		LongestStreak: result.LongestStreak,
		Extended:      result.Extended,
		Broken:        result.Broken,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// XP AWARD HANDLER
// ══════════════════════════════════════════════════════════════════════════════

type awardXPRequest struct {
	UserID string `json:"user_id"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type awardXPResponse struct {
	XPAwarded int    `json:"xp_awarded"`
	TotalXP   int    `json:"total_xp"`
	OldLevel  int    `json:"old_level"`
	NewLevel  int    `json:"new_level"`
	LeveledUp bool   `json:"leveled_up"`
	Reason    string `json:"reason"`
}

// handleAwardXP handles POST /api/v1/xp/awards. Used by platform services
// granting XP for actions the engine does not observe directly, e.g. an
// accepted answer.
func (s *Server) handleAwardXP(w http.ResponseWriter, r *http.Request) {
	var req awardXPRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.AwardXPCommand{
		UserID: shared.UserID(req.UserID),
		Amount: req.Amount,
		Reason: req.Reason,
	}

	result, err := s.deps.AwardXPHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.logError(r, "award xp failed", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, awardXPResponse{
		XPAwarded: result.XPAwarded,
		TotalXP:   result.TotalXP,
		OldLevel:  result.OldLevel,
		NewLevel:  result.NewLevel,
		LeveledUp: result.LeveledUp,
		Reason:    result.Reason,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetUserStats handles GET /api/v1/users/{id}/stats
func (s *Server) handleGetUserStats(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "User ID is required")
		return
	}

	q := query.GetUserStatsQuery{UserID: shared.UserID(userID)}

	result, err := s.deps.GetUserStatsHandler.Handle(r.Context(), q)
	if err != nil {
		s.logError(r, "get user stats failed", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REPUTATION BOARD HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetReputationBoard handles GET /api/v1/reputation/board
func (s *Server) handleGetReputationBoard(w http.ResponseWriter, r *http.Request) {
	q := query.GetReputationBoardQuery{
		Limit:  getQueryParamInt(r, "limit", 20),
		Offset: getQueryParamInt(r, "offset", 0),
	}

	result, err := s.deps.GetReputationBoardHandler.Handle(r.Context(), q)
	if err != nil {
		s.logError(r, "get reputation board failed", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody reads and parses a JSON request body. Writes the error response
// itself and returns false when the body is unusable.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}
	defer r.Body.Close()

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}
	return true
}

func (s *Server) logError(r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		logger.Err(err),
		logger.String("path", r.URL.Path),
		logger.String("request_id", getRequestID(r.Context())),
	)
}
