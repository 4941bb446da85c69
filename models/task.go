package models

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID          int          `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	Status      TaskStatus   `json:"status" db:"status"`
	AssignedTo  *int         `json:"assigned_to,omitempty" db:"assigned_to"`
	TeamID      int          `json:"team_id" db:"team_id"`
	CreatedBy   int          `json:"created_by" db:"created_by"`
	DueDate     *time.Time   `json:"due_date,omitempty" db:"due_date"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`

	AssignedName  *string `json:"assigned_name,omitempty" db:"-"`
	CreatedByName *string `json:"created_by_name,omitempty" db:"-"`
	TeamName      *string `json:"team_name,omitempty" db:"-"`
}
