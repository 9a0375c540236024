package battle

// Side names who acted in a log entry.
type Side string

const (
	SideCharacter Side = "character"
	SideMonster   Side = "monster"
	SideSystem    Side = "system"
)

// LogEntry is one line of the battle log.
type LogEntry struct {
	Turn    int        `json:"turn"`
	Side    Side       `json:"side"`
	Action  ActionKind `json:"action"`
	Skill   string     `json:"skill,omitempty"`
	Hit     bool       `json:"hit"`
	Damage  int        `json:"damage,omitempty"`
	Healed  int        `json:"healed,omitempty"`
	Message string     `json:"message"`
}
