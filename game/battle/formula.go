package battle

// Percent bounds of the combat checks.
const (
	MinHitChance    = 5
	MaxHitChance    = 95
	MinEscapeChance = 10
	MaxEscapeChance = 90
	BaseEscape      = 50
	EscapePerAgi    = 3
)

func clamp(lo, hi, v int) int {
	return min(max(v, lo), hi)
}

// HitChance is the percent chance an attack lands.
func HitChance(accuracy, evasion int) int {
	return clamp(MinHitChance, MaxHitChance, accuracy-evasion)
}

// Damage is the damage of a landed hit; it never drops below 1.
func Damage(attack, defense int) int {
	return max(1, attack-defense)
}

// Guarded halves damage taken while defending, still at least 1.
func Guarded(dmg int) int {
	return max(1, dmg/2)
}

// EscapeChance is the percent chance the character gets away.
func EscapeChance(charAgility, monsterAgility int) int {
	return clamp(MinEscapeChance, MaxEscapeChance, BaseEscape+EscapePerAgi*(charAgility-monsterAgility))
}
