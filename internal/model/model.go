package model

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type AddMemberRequest struct {
	DiscordID      int64  `json:"discord_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	TimeZone       string `json:"time_zone" binding:"required"`
	GithubUsername string `json:"github_username"`
}

type TimeZoneRequest struct {
	TimeZone string `json:"time_zone" binding:"required"`
}

type VacationRequest struct {
	OnVacation bool `json:"on_vacation"`
}

type ScoreboardResponse struct {
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}
