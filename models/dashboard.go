package models

// MemberTaskStats is a team member with the number of tasks assigned to them
// within that team.
type MemberTaskStats struct {
	ID        int    `json:"id" db:"id"`
	StudentID string `json:"student_id" db:"student_id"`
	FullName  string `json:"full_name" db:"full_name"`
	Email     string `json:"email" db:"email"`
	TaskCount int    `json:"task_count" db:"task_count"`
}

type TaskSummary struct {
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	PendingTasks    int `json:"pending_tasks"`
}

type TeamDashboard struct {
	Members      []MemberTaskStats `json:"members"`
	Summary      TaskSummary       `json:"summary"`
	JoinRequests []JoinRequestView `json:"join_requests"`
}

type UserDashboard struct {
	TotalTeams    int `json:"total_teams"`
	TasksAssigned int `json:"tasks_assigned"`
	TotalTasks    int `json:"total_tasks"`
}
