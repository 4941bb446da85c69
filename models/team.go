package models

import "time"

type Team struct {
	ID          int       `json:"id" db:"id"`
	TeamName    string    `json:"team_name" db:"team_name"`
	TeamCode    string    `json:"team_code" db:"team_code"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	Description *string   `json:"description,omitempty" db:"description"`
	MaxMembers  *int      `json:"max_members,omitempty" db:"max_members"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	CreatorName *string `json:"creator_name,omitempty" db:"-"`
	MemberCount *int    `json:"member_count,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// TeamMember is the projection returned by member listings: user identity
// plus whether the user created the team.
type TeamMember struct {
	ID        int    `json:"id" db:"id"`
	StudentID string `json:"student_id" db:"student_id"`
	FullName  string `json:"full_name" db:"full_name"`
	Email     string `json:"email" db:"email"`
	IsCreator bool   `json:"is_creator" db:"is_creator"`
}
