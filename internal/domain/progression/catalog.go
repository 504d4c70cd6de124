package progression

import (
	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// Metric names tracked by achievements and badge predicates. The content
// collaborator computes most of them; votes_cast and xp_total come from the
// engine's own tables.
const (
	MetricQuestionsAuthored = shared.Metric("questions_authored")
	MetricAnswersAuthored   = shared.Metric("answers_authored")
	MetricAnswersAccepted   = shared.Metric("answers_accepted")
	MetricCommentsAuthored  = shared.Metric("comments_authored")
	MetricVotesCast         = shared.Metric("votes_cast")
	MetricBestQuestionVotes = shared.Metric("best_question_votes")
	MetricXPTotal           = shared.Metric("xp_total")
)

// Catalog is the immutable in-memory table of all badge, achievement, and
// daily task definitions. Built once at process start from the seeded
// catalog tables; request handlers only ever read it.
type Catalog struct {
	badges          []Badge
	achievements    []Achievement
	tasks           []DailyTask
	badgeByID       map[string]Badge
	achievementByID map[string]Achievement
	taskByType      map[TaskType]DailyTask
	byMetric        map[shared.Metric][]Achievement
	streakTargets   []Achievement
	specialBySlug   map[string]Achievement
}

// NewCatalog builds the lookup tables.
func NewCatalog(badges []Badge, achievements []Achievement, tasks []DailyTask) *Catalog {
	c := &Catalog{
		badges:          badges,
		achievements:    achievements,
		tasks:           tasks,
		badgeByID:       make(map[string]Badge, len(badges)),
		achievementByID: make(map[string]Achievement, len(achievements)),
		taskByType:      make(map[TaskType]DailyTask, len(tasks)),
		byMetric:        make(map[shared.Metric][]Achievement),
		specialBySlug:   make(map[string]Achievement),
	}

	for _, b := range badges {
		c.badgeByID[b.ID] = b
	}
	for _, a := range achievements {
		c.achievementByID[a.ID] = a
		switch a.CriteriaType {
		case CriteriaCount, CriteriaThreshold:
			c.byMetric[a.Metric] = append(c.byMetric[a.Metric], a)
		case CriteriaStreak:
			c.streakTargets = append(c.streakTargets, a)
		case CriteriaSpecial:
			c.specialBySlug[a.Slug] = a
		}
	}
	for _, t := range tasks {
		c.taskByType[t.TaskType] = t
	}

	return c
}

// Badges returns all badge definitions.
func (c *Catalog) Badges() []Badge {
	return c.badges
}

// Achievements returns all achievement definitions.
func (c *Catalog) Achievements() []Achievement {
	return c.achievements
}

// Tasks returns all daily task definitions.
func (c *Catalog) Tasks() []DailyTask {
	return c.tasks
}

// BadgeByID looks up a badge definition.
func (c *Catalog) BadgeByID(id string) (Badge, bool) {
	b, ok := c.badgeByID[id]
	return b, ok
}

// AchievementByID looks up an achievement definition.
func (c *Catalog) AchievementByID(id string) (Achievement, bool) {
	a, ok := c.achievementByID[id]
	return a, ok
}

// TaskByType resolves the active daily task for a task type.
func (c *Catalog) TaskByType(t TaskType) (DailyTask, bool) {
	task, ok := c.taskByType[t]
	return task, ok
}

// AchievementsForMetric returns the count/threshold achievements driven by
// the given metric.
func (c *Catalog) AchievementsForMetric(metric shared.Metric) []Achievement {
	return c.byMetric[metric]
}

// StreakAchievements returns the streak-type achievements, evaluated by the
// streak tracker rather than by recordMetric.
func (c *Catalog) StreakAchievements() []Achievement {
	return c.streakTargets
}

// SpecialAchievement looks up a special-type achievement by slug.
func (c *Catalog) SpecialAchievement(slug string) (Achievement, bool) {
	a, ok := c.specialBySlug[slug]
	return a, ok
}
