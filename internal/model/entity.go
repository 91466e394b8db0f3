package model

import "time"

type TeamMember struct {
	DiscordID      int64  `gorm:"primaryKey" json:"discord_id"`
	Name           string `json:"name"`
	TimeZone       string `json:"time_zone"`
	GithubUsername string `json:"github_username"`
	OnVacation     bool   `gorm:"default:false" json:"on_vacation"`
	Password       string `json:"-"`
	Role           string `json:"role"`
}

type Streak struct {
	DiscordID     int64 `gorm:"primaryKey" json:"discord_id"`
	CurrentStreak int   `gorm:"default:0" json:"current_streak"`
}

type StatusUpdate struct {
	ID               int       `gorm:"primaryKey" json:"id"`
	DiscordID        int64     `gorm:"index" json:"discord_id"`
	Status           string    `gorm:"type:text" json:"status"`
	SummarizedStatus string    `gorm:"type:text" json:"summarized_status"`
	Timestamp        time.Time `json:"timestamp"`
	TimeZone         string    `json:"time_zone"`
}

// WeeklyPost is the durable pointer at the live scoreboard post. At most one
// row (id=1) exists; it is rewritten in place on every week rollover.
type WeeklyPost struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (TeamMember) TableName() string   { return "team_members" }
func (Streak) TableName() string       { return "streaks" }
func (StatusUpdate) TableName() string { return "updates" }
func (WeeklyPost) TableName() string   { return "weekly_posts" }
