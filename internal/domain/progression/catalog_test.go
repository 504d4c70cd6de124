package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatalog() *Catalog {
	badges := []Badge{
		{ID: "badge-first-question", Slug: "first-question", Criteria: CriteriaFirstQuestion},
		{ID: "badge-civic-duty", Slug: "civic-duty", Criteria: CriteriaCivicDuty},
	}
	achievements := []Achievement{
		{ID: "ach-1", Slug: "first-steps", CriteriaType: CriteriaCount, Metric: MetricQuestionsAuthored, Target: 1},
		{ID: "ach-2", Slug: "grinder", CriteriaType: CriteriaThreshold, Metric: MetricXPTotal, Target: 5000},
		{ID: "ach-3", Slug: "week-streak", CriteriaType: CriteriaStreak, Target: 7},
		{ID: "ach-4", Slug: "early-bird", CriteriaType: CriteriaSpecial},
	}
	tasks := []DailyTask{
		{ID: "task-1", TaskType: TaskCastVotes, Target: 3},
		{ID: "task-2", TaskType: TaskDailyLogin, Target: 1},
	}
	return NewCatalog(badges, achievements, tasks)
}

func TestCatalogLookups(t *testing.T) {
	c := testCatalog()

	b, ok := c.BadgeByID("badge-civic-duty")
	assert.True(t, ok)
	assert.Equal(t, "civic-duty", b.Slug)

	_, ok = c.BadgeByID("badge-unknown")
	assert.False(t, ok)

	a, ok := c.AchievementByID("ach-2")
	assert.True(t, ok)
	assert.Equal(t, "grinder", a.Slug)

	task, ok := c.TaskByType(TaskDailyLogin)
	assert.True(t, ok)
	assert.Equal(t, "task-2", task.ID)

	_, ok = c.TaskByType(TaskType("unknown"))
	assert.False(t, ok)
}

func TestCatalogAchievementsForMetric(t *testing.T) {
	c := testCatalog()

	byQuestions := c.AchievementsForMetric(MetricQuestionsAuthored)
	assert.Len(t, byQuestions, 1)
	assert.Equal(t, "ach-1", byQuestions[0].ID)

	byXP := c.AchievementsForMetric(MetricXPTotal)
	assert.Len(t, byXP, 1)

	assert.Empty(t, c.AchievementsForMetric(MetricVotesCast))
}

func TestCatalogStreakAndSpecial(t *testing.T) {
	c := testCatalog()

	streaks := c.StreakAchievements()
	assert.Len(t, streaks, 1)
	assert.Equal(t, "week-streak", streaks[0].Slug)

	// Streak and special achievements never ride on metrics.
	assert.Empty(t, c.AchievementsForMetric(""))

	special, ok := c.SpecialAchievement("early-bird")
	assert.True(t, ok)
	assert.Equal(t, "ach-4", special.ID)

	_, ok = c.SpecialAchievement("night-owl")
	assert.False(t, ok)
}
