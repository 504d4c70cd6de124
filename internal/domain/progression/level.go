// Package progression contains the level math and the fixed catalogs of
// badges, achievements, and daily tasks, together with their per-user
// progress records. Catalogs are configuration data: loaded once at startup,
// immutable at request time.
package progression

import (
	"math"

	"github.com/devoverflow-hub/devoverflow-core/internal/domain/shared"
)

// Level math. Pure functions, no I/O:
//
//	level(xp)     = floor(sqrt(xp/100)) + 1
//	xpFloor(L)    = (L-1)^2 * 100
//	xpCeiling(L)  = L^2 * 100

// Level computes the level for a cumulative XP total.
func Level(xp shared.XP) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Sqrt(float64(xp)/100.0)) + 1
	// Guard against floating point drift at exact level boundaries.
	for XPFloor(level+1) <= xp {
		level++
	}
	for level > 1 && XPFloor(level) > xp {
		level--
	}
	return level
}

// XPFloor returns the XP total at which the given level begins.
func XPFloor(level int) shared.XP {
	if level <= 1 {
		return 0
	}
	return shared.XP((level - 1) * (level - 1) * 100)
}

// XPCeiling returns the XP total needed to reach the next level.
func XPCeiling(level int) shared.XP {
	if level < 1 {
		level = 1
	}
	return shared.XP(level * level * 100)
}

// LevelInfo describes where within a level an XP total sits.
type LevelInfo struct {
	// Level for this XP total.
	Level int

	// Progress is XP earned within the current level.
	Progress int

	// Needed is the level's full width in XP.
	Needed int
}

// InfoFor computes level and progress-within-level for an XP total.
func InfoFor(xp shared.XP) LevelInfo {
	level := Level(xp)
	floor := XPFloor(level)
	ceiling := XPCeiling(level)
	return LevelInfo{
		Level:    level,
		Progress: int(xp - floor),
		Needed:   int(ceiling - floor),
	}
}
