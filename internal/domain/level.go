// internal/domain/level.go
package domain

// LevelDefinition is one entry of the read-only level catalog. Levels
// are contiguous point bands; MaxPoints is nil for the unbounded top
// band. BonusPercent is the structured bonus rule; Benefits text is
// presentational (legacy rows may still embed the bonus there).
type LevelDefinition struct {
	Level        int      `bson:"level" json:"level"`
	Title        string   `bson:"title" json:"title"`
	MinPoints    int      `bson:"minPoints" json:"minPoints"`
	MaxPoints    *int     `bson:"maxPoints,omitempty" json:"maxPoints,omitempty"`
	Icon         string   `bson:"icon,omitempty" json:"icon,omitempty"`
	Color        string   `bson:"color,omitempty" json:"color,omitempty"`
	Benefits     []string `bson:"benefits,omitempty" json:"benefits,omitempty"`
	BonusPercent int      `bson:"bonusPercent,omitempty" json:"bonusPercent,omitempty"`
}

// LevelProgress is a resolved level plus the user's position inside it.
type LevelProgress struct {
	LevelDefinition
	TotalPoints     int     `json:"totalPoints"`
	PointsToNext    int     `json:"pointsToNext"`    // 0 when the top band is reached
	ProgressPercent float64 `json:"progressPercent"` // Within the current band, clamped to [0,100]
	IsMaxLevel      bool    `json:"isMaxLevel"`
}
