package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Benjaminax/camous-taskboard-system/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamCodeConflict   = errors.New("team code conflict")
	ErrTeamCreatorInvalid = errors.New("team creator conflict or invalid")
)

type TeamRepository interface {
	// Create вставляет команду. Заполняет ID и CreatedAt. Может выполняться
	// внутри транзакции вместе с добавлением создателя в team_members.
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByCode(ctx context.Context, code string) (*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	// ListAll возвращает все команды с именем создателя и числом участников.
	ListAll(ctx context.Context) ([]models.Team, error)
	ListByUserID(ctx context.Context, userID int) ([]models.Team, error)

	// ListIDsByCreator возвращает id команд, созданных пользователем.
	// Нужен каскадному удалению пользователя.
	ListIDsByCreator(ctx context.Context, exec SQLExecutor, userID int) ([]int, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (team_name, team_code, created_by, description, max_members)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		team.TeamName,
		team.TeamCode,
		team.CreatedBy,
		team.Description,
		team.MaxMembers,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "teams_team_code_key" {
					return ErrTeamCodeConflict
				}
			case "23503":
				if pqErr.Constraint == "teams_created_by_fkey" {
					return ErrTeamCreatorInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, team_name, team_code, created_by, description, max_members, logo_key, created_at
		FROM teams
		WHERE id = $1`
	return r.scanTeam(ctx, query, id)
}

func (r *postgresTeamRepository) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	query := `
		SELECT id, team_name, team_code, created_by, description, max_members, logo_key, created_at
		FROM teams
		WHERE team_code = $1`
	return r.scanTeam(ctx, query, code)
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams SET
			team_name = $1,
			description = $2,
			max_members = $3,
			logo_key = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		team.TeamName,
		team.Description,
		team.MaxMembers,
		team.LogoKey,
		team.ID,
	)
	if err != nil {
		return err
	}

	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) ListAll(ctx context.Context) ([]models.Team, error) {
	query := `
		SELECT t.id, t.team_name, t.team_code, t.created_by, t.description, t.max_members, t.logo_key, t.created_at,
		       u.full_name AS creator_name,
		       (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = t.id) AS member_count
		FROM teams t
		LEFT JOIN users u ON u.id = t.created_by
		ORDER BY t.id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		var creatorName sql.NullString
		var memberCount int
		if scanErr := rows.Scan(
			&team.ID,
			&team.TeamName,
			&team.TeamCode,
			&team.CreatedBy,
			&team.Description,
			&team.MaxMembers,
			&team.LogoKey,
			&team.CreatedAt,
			&creatorName,
			&memberCount,
		); scanErr != nil {
			return nil, scanErr
		}
		if creatorName.Valid {
			team.CreatorName = &creatorName.String
		}
		team.MemberCount = &memberCount
		teams = append(teams, team)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *postgresTeamRepository) ListByUserID(ctx context.Context, userID int) ([]models.Team, error) {
	query := `
		SELECT t.id, t.team_name, t.team_code, t.created_by, t.description, t.max_members, t.logo_key, t.created_at
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(
			&team.ID,
			&team.TeamName,
			&team.TeamCode,
			&team.CreatedBy,
			&team.Description,
			&team.MaxMembers,
			&team.LogoKey,
			&team.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (r *postgresTeamRepository) ListIDsByCreator(ctx context.Context, exec SQLExecutor, userID int) ([]int, error) {
	query := `SELECT id FROM teams WHERE created_by = $1`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *postgresTeamRepository) scanTeam(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&team.ID,
		&team.TeamName,
		&team.TeamCode,
		&team.CreatedBy,
		&team.Description,
		&team.MaxMembers,
		&team.LogoKey,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}
