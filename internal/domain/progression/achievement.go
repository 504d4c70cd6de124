package progression

import (
	"time"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// CriteriaType classifies how an achievement's progress is driven.
type CriteriaType string

const (
	// CriteriaCount - progress is a running count of events.
	CriteriaCount CriteriaType = "count"

	// CriteriaThreshold - progress is an absolute statistic that must
	// reach a threshold.
	CriteriaThreshold CriteriaType = "threshold"

	// CriteriaStreak - completed by the streak tracker when the login
	// streak reaches the target.
	CriteriaStreak CriteriaType = "streak"

	// CriteriaSpecial - completed by a dedicated check, not by metrics.
	CriteriaSpecial CriteriaType = "special"
)

// IsValid checks that the criteria type is known.
func (c CriteriaType) IsValid() bool {
	switch c {
	case CriteriaCount, CriteriaThreshold, CriteriaStreak, CriteriaSpecial:
		return true
	default:
		return false
	}
}

// Achievement is a catalog entry: a badge generalized with incremental
// progress and an XP reward on completion.
type Achievement struct {
	// ID - catalog row identifier.
	ID string

	// Slug - stable machine name, e.g. "prolific-answerer".
	Slug string

	// Name - display name.
	Name string

	// CriteriaType - how progress is driven.
	CriteriaType CriteriaType

	// Metric - the statistic tracked (empty for special).
	Metric shared.Metric

	// Target - progress value at which the achievement completes.
	Target int

	// XPReward - granted exactly once, on completion.
	XPReward int
}

// TracksMetric reports whether recordMetric calls drive this achievement.
func (a Achievement) TracksMetric(metric shared.Metric) bool {
	if a.CriteriaType != CriteriaCount && a.CriteriaType != CriteriaThreshold {
		return false
	}
	return a.Metric == metric
}

// UserAchievement is the per-(user, achievement) progress record.
// Progress is monotonically non-decreasing while not completed; completion
// is a one-way flip that freezes progress.
type UserAchievement struct {
	UserID        shared.UserID
	AchievementID string
	Progress      int
	Completed     bool
	CompletedAt   time.Time
}

// NewUserAchievement lazily creates the record on the first relevant event.
func NewUserAchievement(userID shared.UserID, a Achievement, value int) *UserAchievement {
	ua := &UserAchievement{
		UserID:        userID,
		AchievementID: a.ID,
		Progress:      value,
	}
	if value >= a.Target {
		ua.Completed = true
		ua.CompletedAt = time.Now().UTC()
	}
	return ua
}

// ApplyValue advances progress toward the target. Returns true when this
// call completed the achievement. Calls after completion are no-ops:
// progress is frozen and the XP reward must not be granted again.
func (ua *UserAchievement) ApplyValue(a Achievement, value int) (completedNow bool) {
	if ua.Completed {
		return false
	}
	// The reported value is an absolute statistic; a transient regression
	// (votes removed, content deleted) must not move progress backwards.
	if value > ua.Progress {
		ua.Progress = value
	}
	if ua.Progress >= a.Target {
		ua.Completed = true
		ua.CompletedAt = time.Now().UTC()
		return true
	}
	return false
}
