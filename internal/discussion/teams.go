package discussion

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/discuss/backend/internal/models"
)

// Teams manages team membership and answers view-permission checks.
type Teams struct {
	db *gorm.DB
}

func NewTeams(db *gorm.DB) *Teams {
	return &Teams{db: db}
}

// CheckViewPermission fails with ErrNotFound for an unknown team and with
// ErrPermission when userID is not a member.
func (t *Teams) CheckViewPermission(ctx context.Context, userID, teamID int) error {
	var team models.Team
	if err := t.db.WithContext(ctx).Select("id").Take(&team, teamID).Error; err != nil {
		return notFound(err, fmt.Errorf("%w: team %d", ErrNotFound, teamID))
	}

	var n int64
	err := t.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: not a member of team %d", ErrPermission, teamID)
	}
	return nil
}

// CreateTeam creates a team with creator as its first member.
func (t *Teams) CreateTeam(ctx context.Context, creator int, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name cannot be empty", ErrValidation)
	}

	team := models.Team{Name: name, CreatedBy: creator}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			if uniqueViolation(err) {
				return fmt.Errorf("%w: team %q already exists", ErrValidation, name)
			}
			return err
		}
		return tx.Create(&models.TeamMember{TeamID: team.ID, UserID: creator}).Error
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// AddMember adds userID to teamID. Only existing members may add others;
// adding someone twice is a no-op.
func (t *Teams) AddMember(ctx context.Context, actor, teamID, userID int) error {
	if err := t.CheckViewPermission(ctx, actor, teamID); err != nil {
		return err
	}

	var user models.User
	if err := t.db.WithContext(ctx).Select("id").Take(&user, userID).Error; err != nil {
		return notFound(err, fmt.Errorf("%w: user %d", ErrNotFound, userID))
	}

	err := t.db.WithContext(ctx).Create(&models.TeamMember{TeamID: teamID, UserID: userID}).Error
	if err != nil && !uniqueViolation(err) {
		return err
	}
	return nil
}

// Members lists a team's members by username. The viewer must be a member.
func (t *Teams) Members(ctx context.Context, viewer, teamID int) ([]models.User, error) {
	if err := t.CheckViewPermission(ctx, viewer, teamID); err != nil {
		return nil, err
	}

	users := []models.User{}
	err := t.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.user_id = users.id").
		Where("team_members.team_id = ?", teamID).
		Order("users.username").
		Find(&users).Error
	return users, err
}

// MyTeams lists the teams userID belongs to, by name.
func (t *Teams) MyTeams(ctx context.Context, userID int) ([]models.Team, error) {
	var teams []models.Team
	err := t.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.name").
		Find(&teams).Error
	return teams, err
}

// teamIDs returns the ids of the teams userID belongs to.
func (t *Teams) teamIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := t.db.WithContext(ctx).Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error
	return ids, err
}
