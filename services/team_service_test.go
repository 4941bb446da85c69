package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type teamServiceFixture struct {
	svc             TeamService
	userRepo        *mockUserRepo
	teamRepo        *mockTeamRepo
	membershipRepo  *mockMembershipRepo
	joinRequestRepo *mockJoinRequestRepo
	taskRepo        *mockTaskRepo
}

func newTeamServiceFixture(t *testing.T) *teamServiceFixture {
	t.Helper()
	f := &teamServiceFixture{
		userRepo:        newMockUserRepo(),
		teamRepo:        newMockTeamRepo(),
		membershipRepo:  newMockMembershipRepo(),
		joinRequestRepo: newMockJoinRequestRepo(),
		taskRepo:        newMockTaskRepo(),
	}
	authSvc := NewAuthService(f.userRepo, nil, nil)
	f.svc = NewTeamService(nil, f.teamRepo, f.membershipRepo, f.joinRequestRepo,
		f.taskRepo, f.userRepo, authSvc, nil, nil, testLogger())
	return f
}

func (f *teamServiceFixture) addUser(t *testing.T, studentID, email string) *models.User {
	t.Helper()
	user := &models.User{StudentID: studentID, FullName: "User " + studentID, Email: email, PasswordHash: "x"}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *teamServiceFixture) addTeam(t *testing.T, code string, creatorID int) *models.Team {
	t.Helper()
	team := &models.Team{TeamName: "Team " + code, TeamCode: code, CreatedBy: creatorID}
	require.NoError(t, f.teamRepo.Create(context.Background(), nil, team))
	require.NoError(t, f.membershipRepo.Add(context.Background(), nil, team.ID, creatorID))
	return team
}

func TestTeamServiceCreateTeamRequiresName(t *testing.T) {
	f := newTeamServiceFixture(t)

	_, err := f.svc.CreateTeam(context.Background(), CreateTeamInput{TeamName: "   ", CreatorID: 1})
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}

func TestTeamServiceJoinByCode(t *testing.T) {
	f := newTeamServiceFixture(t)
	creator := f.addUser(t, "S-1", "creator@example.edu")
	member := f.addUser(t, "S-2", "member@example.edu")
	team := f.addTeam(t, "ABC123", creator.ID)

	joined, err := f.svc.JoinByCode(context.Background(), "abc123", member.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, joined.ID)

	isMember, err := f.membershipRepo.IsMember(context.Background(), team.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	// Повторное вступление
	_, err = f.svc.JoinByCode(context.Background(), "ABC123", member.ID)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	// Неизвестный код
	_, err = f.svc.JoinByCode(context.Background(), "ZZZZZZ", member.ID)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamServiceRequestJoin(t *testing.T) {
	f := newTeamServiceFixture(t)
	creator := f.addUser(t, "S-1", "creator@example.edu")
	outsider := f.addUser(t, "S-2", "outsider@example.edu")
	team := f.addTeam(t, "ABC123", creator.ID)

	err := f.svc.RequestJoin(context.Background(), team.ID, outsider.ID, JoinRequestInput{})
	require.NoError(t, err)

	// Повторный запрос при живом pending
	err = f.svc.RequestJoin(context.Background(), team.ID, outsider.ID, JoinRequestInput{})
	assert.ErrorIs(t, err, ErrJoinRequestPending)

	// Участник не может подать запрос
	err = f.svc.RequestJoin(context.Background(), team.ID, creator.ID, JoinRequestInput{})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	// Несуществующая команда
	err = f.svc.RequestJoin(context.Background(), 999, outsider.ID, JoinRequestInput{})
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamServiceInvite(t *testing.T) {
	f := newTeamServiceFixture(t)
	creator := f.addUser(t, "S-1", "creator@example.edu")
	invited := f.addUser(t, "S-2", "invited@example.edu")
	team := f.addTeam(t, "ABC123", creator.ID)

	email := invited.Email
	err := f.svc.Invite(context.Background(), team.ID, creator.ID, InviteInput{Email: &email})
	require.NoError(t, err)

	isMember, err := f.membershipRepo.IsMember(context.Background(), team.ID, invited.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	// Уже участник
	err = f.svc.Invite(context.Background(), team.ID, creator.ID, InviteInput{UserID: &invited.ID})
	assert.ErrorIs(t, err, ErrUserAlreadyMember)

	// Нет ни user_id, ни email
	err = f.svc.Invite(context.Background(), team.ID, creator.ID, InviteInput{})
	assert.ErrorIs(t, err, ErrMissingUserOrEmail)

	// Неизвестный email
	ghost := "ghost@example.edu"
	err = f.svc.Invite(context.Background(), team.ID, creator.ID, InviteInput{Email: &ghost})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTeamServiceLeaveTeam(t *testing.T) {
	f := newTeamServiceFixture(t)
	creator := f.addUser(t, "S-1", "creator@example.edu")
	member := f.addUser(t, "S-2", "member@example.edu")
	team := f.addTeam(t, "ABC123", creator.ID)
	require.NoError(t, f.membershipRepo.Add(context.Background(), nil, team.ID, member.ID))

	// Создатель не может покинуть команду
	err := f.svc.LeaveTeam(context.Background(), team.ID, creator.ID)
	assert.ErrorIs(t, err, ErrCreatorCannotLeave)

	require.NoError(t, f.svc.LeaveTeam(context.Background(), team.ID, member.ID))

	isMember, err := f.membershipRepo.IsMember(context.Background(), team.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	// Повторный выход — no-op, не ошибка
	assert.NoError(t, f.svc.LeaveTeam(context.Background(), team.ID, member.ID))
}

func TestTeamServiceUpdateTeam(t *testing.T) {
	f := newTeamServiceFixture(t)
	creator := f.addUser(t, "S-1", "creator@example.edu")
	stranger := f.addUser(t, "S-2", "stranger@example.edu")
	team := f.addTeam(t, "ABC123", creator.ID)

	name := "Renamed Squad"
	desc := "capstone project group"
	updated, err := f.svc.UpdateTeam(context.Background(), team.ID,
		UpdateTeamInput{TeamName: &name, Description: &desc}, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Squad", updated.TeamName)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "capstone project group", *updated.Description)

	// Только создатель
	_, err = f.svc.UpdateTeam(context.Background(), team.ID, UpdateTeamInput{TeamName: &name}, stranger.ID)
	assert.ErrorIs(t, err, ErrTeamEditForbidden)

	empty := "  "
	_, err = f.svc.UpdateTeam(context.Background(), team.ID, UpdateTeamInput{TeamName: &empty}, creator.ID)
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}
