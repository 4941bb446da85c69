package services

import (
	"context"
	"sort"
	"time"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/Benjaminax/camous-taskboard-system/repositories"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.StudentID == user.StudentID {
			return repositories.ErrUserStudentIDConflict
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := m.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context) ([]models.User, error) {
	ids := make([]int, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, *m.users[id])
	}
	return users, nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams  map[int]*models.Team
	nextID int
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
}

func (m *mockTeamRepo) Create(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
	for _, t := range m.teams {
		if t.TeamCode == team.TeamCode {
			return repositories.ErrTeamCodeConflict
		}
	}
	team.ID = m.nextID
	m.nextID++
	team.CreatedAt = time.Now()
	clone := *team
	m.teams[team.ID] = &clone
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	if t, ok := m.teams[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (m *mockTeamRepo) GetByCode(_ context.Context, code string) (*models.Team, error) {
	for _, t := range m.teams {
		if t.TeamCode == code {
			clone := *t
			return &clone, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (m *mockTeamRepo) Update(_ context.Context, team *models.Team) error {
	if _, ok := m.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	clone := *team
	m.teams[team.ID] = &clone
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := m.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(m.teams, id)
	return nil
}

func (m *mockTeamRepo) ListAll(_ context.Context) ([]models.Team, error) {
	ids := make([]int, 0, len(m.teams))
	for id := range m.teams {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ids)))
	teams := make([]models.Team, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, *m.teams[id])
	}
	return teams, nil
}

func (m *mockTeamRepo) ListByUserID(_ context.Context, _ int) ([]models.Team, error) {
	return nil, nil
}

func (m *mockTeamRepo) ListIDsByCreator(_ context.Context, _ repositories.SQLExecutor, userID int) ([]int, error) {
	ids := make([]int, 0)
	for id, t := range m.teams {
		if t.CreatedBy == userID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

// ── Mock MembershipRepository ──

type membershipKey struct {
	teamID int
	userID int
}

type mockMembershipRepo struct {
	members map[membershipKey]bool
	stats   map[int][]models.MemberTaskStats
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{
		members: make(map[membershipKey]bool),
		stats:   make(map[int][]models.MemberTaskStats),
	}
}

func (m *mockMembershipRepo) Add(_ context.Context, _ repositories.SQLExecutor, teamID, userID int) error {
	key := membershipKey{teamID, userID}
	if m.members[key] {
		return repositories.ErrMembershipConflict
	}
	m.members[key] = true
	return nil
}

func (m *mockMembershipRepo) Remove(_ context.Context, teamID, userID int) error {
	key := membershipKey{teamID, userID}
	if !m.members[key] {
		return repositories.ErrMembershipNotFound
	}
	delete(m.members, key)
	return nil
}

func (m *mockMembershipRepo) IsMember(_ context.Context, teamID, userID int) (bool, error) {
	return m.members[membershipKey{teamID, userID}], nil
}

func (m *mockMembershipRepo) ListMembers(_ context.Context, _ int) ([]models.TeamMember, error) {
	return nil, nil
}

func (m *mockMembershipRepo) ListMemberStats(_ context.Context, teamID int) ([]models.MemberTaskStats, error) {
	return m.stats[teamID], nil
}

func (m *mockMembershipRepo) CountByUserID(_ context.Context, userID int) (int, error) {
	count := 0
	for key := range m.members {
		if key.userID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockMembershipRepo) DeleteByTeamID(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	for key := range m.members {
		if key.teamID == teamID {
			delete(m.members, key)
		}
	}
	return nil
}

func (m *mockMembershipRepo) DeleteByUserID(_ context.Context, _ repositories.SQLExecutor, userID int) error {
	for key := range m.members {
		if key.userID == userID {
			delete(m.members, key)
		}
	}
	return nil
}

// ── Mock JoinRequestRepository ──

type mockJoinRequestRepo struct {
	requests []*models.JoinRequest
	nextID   int
	views    map[int][]models.JoinRequestView
	listErr  error
}

func newMockJoinRequestRepo() *mockJoinRequestRepo {
	return &mockJoinRequestRepo{
		nextID: 1,
		views:  make(map[int][]models.JoinRequestView),
	}
}

func (m *mockJoinRequestRepo) Create(_ context.Context, request *models.JoinRequest) error {
	for _, r := range m.requests {
		if r.TeamID == request.TeamID && r.UserID == request.UserID && r.Status == models.JoinRequestPending {
			return repositories.ErrJoinRequestPending
		}
	}
	request.ID = m.nextID
	m.nextID++
	request.Status = models.JoinRequestPending
	request.RequestedAt = time.Now()
	clone := *request
	m.requests = append(m.requests, &clone)
	return nil
}

func (m *mockJoinRequestRepo) HasPending(_ context.Context, teamID, userID int) (bool, error) {
	for _, r := range m.requests {
		if r.TeamID == teamID && r.UserID == userID && r.Status == models.JoinRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockJoinRequestRepo) ListPendingByTeam(_ context.Context, teamID int) ([]models.JoinRequestView, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.views[teamID], nil
}

func (m *mockJoinRequestRepo) DeleteByTeamID(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	kept := m.requests[:0]
	for _, r := range m.requests {
		if r.TeamID != teamID {
			kept = append(kept, r)
		}
	}
	m.requests = kept
	return nil
}

func (m *mockJoinRequestRepo) DeleteByUserID(_ context.Context, _ repositories.SQLExecutor, userID int) error {
	kept := m.requests[:0]
	for _, r := range m.requests {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	m.requests = kept
	return nil
}

// ── Mock TaskRepository ──

type mockTaskRepo struct {
	tasks  map[int]*models.Task
	nextID int

	// lastListLimit запоминает limit последнего ListByUser.
	lastListLimit int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[int]*models.Task), nextID: 1}
}

func (m *mockTaskRepo) Create(_ context.Context, task *models.Task) error {
	task.ID = m.nextID
	m.nextID++
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id int) (*models.Task, error) {
	if t, ok := m.tasks[id]; ok {
		clone := *t
		return &clone, nil
	}
	return nil, repositories.ErrTaskNotFound
}

func (m *mockTaskRepo) Update(_ context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return repositories.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	clone := *task
	m.tasks[task.ID] = &clone
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.tasks[id]; !ok {
		return repositories.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *mockTaskRepo) ListByTeam(_ context.Context, teamID int, status *models.TaskStatus) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	for _, t := range m.tasks {
		if t.TeamID != teamID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	return tasks, nil
}

func (m *mockTaskRepo) ListByUser(_ context.Context, userID, limit int) ([]models.Task, error) {
	m.lastListLimit = limit
	tasks := make([]models.Task, 0)
	for _, t := range m.tasks {
		if t.CreatedBy == userID || (t.AssignedTo != nil && *t.AssignedTo == userID) {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (m *mockTaskRepo) Summary(_ context.Context, teamID int) (models.TaskSummary, error) {
	var summary models.TaskSummary
	for _, t := range m.tasks {
		if t.TeamID != teamID {
			continue
		}
		summary.TotalTasks++
		switch t.Status {
		case models.TaskStatusCompleted:
			summary.CompletedTasks++
		case models.TaskStatusInProgress:
			summary.InProgressTasks++
		case models.TaskStatusPending:
			summary.PendingTasks++
		}
	}
	return summary, nil
}

func (m *mockTaskRepo) CountAssignedTo(_ context.Context, userID int) (int, error) {
	count := 0
	for _, t := range m.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockTaskRepo) CountAll(_ context.Context) (int, error) {
	return len(m.tasks), nil
}

func (m *mockTaskRepo) DeleteByTeamID(_ context.Context, _ repositories.SQLExecutor, teamID int) error {
	for id, t := range m.tasks {
		if t.TeamID == teamID {
			delete(m.tasks, id)
		}
	}
	return nil
}

func (m *mockTaskRepo) DeleteByCreator(_ context.Context, _ repositories.SQLExecutor, userID int) error {
	for id, t := range m.tasks {
		if t.CreatedBy == userID {
			delete(m.tasks, id)
		}
	}
	return nil
}

func (m *mockTaskRepo) UnassignUser(_ context.Context, _ repositories.SQLExecutor, userID int) error {
	for _, t := range m.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			t.AssignedTo = nil
		}
	}
	return nil
}

// ── Mock Notifier ──

type notification struct {
	teamID  int
	event   string
	payload interface{}
}

type mockNotifier struct {
	notifications []notification
}

func (m *mockNotifier) NotifyTeam(teamID int, event string, payload interface{}) {
	m.notifications = append(m.notifications, notification{teamID, event, payload})
}
