package models

import "time"

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

type JoinRequest struct {
	ID            int               `json:"id" db:"id"`
	TeamID        int               `json:"team_id" db:"team_id"`
	UserID        int               `json:"user_id" db:"user_id"`
	RequestedRole *string           `json:"requested_role,omitempty" db:"requested_role"`
	Message       *string           `json:"message,omitempty" db:"message"`
	Status        JoinRequestStatus `json:"status" db:"status"`
	RequestedAt   time.Time         `json:"requested_at" db:"requested_at"`
}

// JoinRequestView is the dashboard projection of a pending request,
// joined with the requesting user's identity.
type JoinRequestView struct {
	ID          int       `json:"id" db:"id"`
	RequestedAt time.Time `json:"requested_at" db:"requested_at"`
	FullName    string    `json:"full_name" db:"full_name"`
	StudentID   string    `json:"student_id" db:"student_id"`
	Email       string    `json:"email" db:"email"`
}
