package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
// Тексты совпадают с сообщениями исходного API: клиент сопоставляет
// некоторые из них дословно.
var (
	// Ресурс не найден
	ErrUserNotFound = errors.New("User not found")
	ErrTeamNotFound = errors.New("Team not found")
	ErrTaskNotFound = errors.New("Task not found")

	// Конфликты (исторически отдаются как 400, не 409)
	ErrUserAlreadyExists  = errors.New("User already exists")
	ErrAlreadyMember      = errors.New("Already a team member")
	ErrUserAlreadyMember  = errors.New("User already a team member")
	ErrJoinRequestPending = errors.New("Join request already pending")

	// Ошибки валидации и бизнес-правил
	ErrInvalidCredentials     = errors.New("Invalid credentials")
	ErrInvalidEmailFormat     = errors.New("Invalid email format")
	ErrTeamNameRequired       = errors.New("Team name is required")
	ErrTaskTitleRequired      = errors.New("Task title is required")
	ErrMissingUserOrEmail     = errors.New("Missing user_id or email")
	ErrNoUpdates              = errors.New("No updates provided")
	ErrCreatorCannotLeave     = errors.New("Team creator cannot leave the team. Delete the team instead.")
	ErrAdminSelfDelete        = errors.New("Admins cannot delete their own account")
	ErrCurrentPasswordWrong   = errors.New("Current password is incorrect")
	ErrUnsupportedImageFormat = errors.New("Unsupported image content type")

	// Ошибки авторизации
	ErrTeamEditForbidden   = errors.New("Only the team creator can edit the team")
	ErrTeamDeleteForbidden = errors.New("Only the team creator can delete the team")
	ErrTaskDeleteForbidden = errors.New("Only task creator or team owner can delete task")
	ErrTaskCreateForbidden = errors.New("You must be a member of the team to create tasks")
	ErrTaskUpdateForbidden = errors.New("You must be a team member to update tasks")
	ErrAdminRequired       = errors.New("Admin privileges required")
)
