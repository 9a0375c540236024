package skill

// MaxLevel caps skill levels.
const MaxLevel = 99

// ExpForLevel returns the cumulative experience needed to reach level.
// Level n+1 needs 50*n*(n+1): 100 for level 2, 300 for 3, 600 for 4.
func ExpForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return 50 * n * (n + 1)
}

// LevelForExp derives a skill level from accumulated experience.
func LevelForExp(exp int) int {
	lv := 1
	for lv < MaxLevel && exp >= ExpForLevel(lv+1) {
		lv++
	}
	return lv
}
