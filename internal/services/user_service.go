package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"gorm.io/gorm"
)

const (
	minSearchLength  = 2
	maxSearchResults = 50
)

// UserService finds end users and changes their designation.
type UserService struct {
	db  *gorm.DB
	acl *access.Evaluator
}

func NewUserService(db *gorm.DB, acl *access.Evaluator) *UserService {
	return &UserService{db: db, acl: acl}
}

func (s *UserService) rows(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("users AS u").
		Select(`u.id, u.email, u.personal_email, u.first_name, u.last_name, u.role,
			u.school_id, u.city_id, s.name AS school_name, c.name AS city_name`).
		Joins("LEFT JOIN schools s ON s.id = u.school_id").
		Joins("LEFT JOIN cities c ON c.id = COALESCE(u.city_id, s.city_id)")
}

// Search matches the query case-insensitively against names and both email
// addresses. Queries shorter than two characters match nothing.
func (s *UserService) Search(ctx context.Context, sess *access.Session, query string) ([]dto.UserRow, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceUser, access.ActionRead)); err != nil {
		return nil, err
	}

	rows := []dto.UserRow{}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return rows, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	err := s.rows(ctx).
		Where(`LOWER(u.first_name) LIKE ? ESCAPE '\'
			OR LOWER(u.last_name) LIKE ? ESCAPE '\'
			OR LOWER(u.email) LIKE ? ESCAPE '\'
			OR LOWER(COALESCE(u.personal_email, '')) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern).
		Order("u.last_name ASC").
		Order("u.first_name ASC").
		Order("u.id ASC").
		Limit(maxSearchResults).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return rows, nil
}

func (s *UserService) Get(ctx context.Context, sess *access.Session, id uint) (*dto.UserRow, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceUser, access.ActionRead)); err != nil {
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *UserService) get(ctx context.Context, id uint) (*dto.UserRow, error) {
	var row dto.UserRow
	res := s.rows(ctx).Where("u.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to load user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("user", id)
	}
	return &row, nil
}

// SetRole designates a user as representative or plain user. Setting the
// current role again succeeds.
func (s *UserService) SetRole(ctx context.Context, sess *access.Session, id uint, role string) (*dto.UserRow, error) {
	if err := s.acl.Authorize(sess, access.Op(access.ResourceUser, access.ActionUpdate)); err != nil {
		return nil, err
	}
	parsed, err := ParseUserRole(role)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", parsed)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update user role: %w", res.Error)
	}
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.UserRoleChanges.WithLabelValues(string(parsed)).Inc()
	slog.Info("user role changed", "user_id", id, "role", parsed, "moderator_id", sess.ModeratorID)
	return row, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
