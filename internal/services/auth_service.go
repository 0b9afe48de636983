package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenType marks tokens issued to moderators so no other token signed with
// the same secret can open a session.
const TokenType = "moderator_session"

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
	acl *access.Evaluator
	now func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, acl *access.Evaluator) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
		acl: acl,
		now: time.Now,
	}
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	var mod models.Moderator
	err := s.db.WithContext(ctx).Where("username = ?", username).Take(&mod).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load moderator: %w", err)
	}

	if !mod.Active {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(mod.PasswordHash), []byte(req.Password)); err != nil {
		metrics.Logins.WithLabelValues("rejected").Inc()
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.IssueToken(&mod)
	if err != nil {
		return nil, err
	}

	metrics.Logins.WithLabelValues("success").Inc()
	slog.Info("moderator logged in", "moderator_id", mod.ID, "role", mod.Role)

	role := access.Role(mod.Role)
	return &dto.LoginResponse{
		Status:    dto.StatusOK,
		Token:     token,
		Role:      mod.Role,
		ExpiresAt: expiresAt,
		Moderator: dto.ModeratorResponse{
			ID:       mod.ID,
			Username: mod.Username,
			Name:     mod.Name,
		},
		Sections: sectionNames(s.acl.Sections(role)),
	}, nil
}

// IssueToken signs a session token bound to the moderator's current role and
// session version.
func (s *AuthService) IssueToken(mod *models.Moderator) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.JWTExpiry)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(mod.ID), 10),
		"role": mod.Role,
		"type": TokenType,
		"ver":  mod.SessionVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ResolveSession turns verified token claims into a session. The moderator
// row is consulted on every call, so deactivation, role changes and logout
// take effect on the next request.
func (s *AuthService) ResolveSession(ctx context.Context, claims jwt.MapClaims) (*access.Session, error) {
	if typ, _ := claims["type"].(string); typ != TokenType {
		return nil, fmt.Errorf("%w: unexpected token type", access.ErrUnauthenticated)
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: malformed subject", access.ErrUnauthenticated)
	}
	role, _ := claims["role"].(string)
	ver, ok := claims["ver"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: missing session version", access.ErrUnauthenticated)
	}

	var mod models.Moderator
	err = s.db.WithContext(ctx).Take(&mod, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown moderator", access.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load moderator: %w", err)
	}

	switch {
	case !mod.Active:
		return nil, fmt.Errorf("%w: moderator disabled", access.ErrUnauthenticated)
	case mod.Role != role || !access.Role(mod.Role).Valid():
		return nil, fmt.Errorf("%w: role changed", access.ErrUnauthenticated)
	case int(ver) != mod.SessionVersion:
		return nil, fmt.Errorf("%w: session revoked", access.ErrUnauthenticated)
	}

	return &access.Session{ModeratorID: mod.ID, Role: access.Role(mod.Role)}, nil
}

// Logout invalidates every token issued to the moderator so far.
func (s *AuthService) Logout(ctx context.Context, sess *access.Session) error {
	if sess == nil || sess.ModeratorID == 0 {
		return access.ErrUnauthenticated
	}
	err := s.db.WithContext(ctx).Model(&models.Moderator{}).
		Where("id = ?", sess.ModeratorID).
		UpdateColumn("session_version", gorm.Expr("session_version + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	slog.Info("moderator logged out", "moderator_id", sess.ModeratorID)
	return nil
}

func (s *AuthService) Verify(sess *access.Session) (*dto.VerifyResponse, error) {
	if sess == nil || sess.ModeratorID == 0 {
		return nil, access.ErrUnauthenticated
	}
	return &dto.VerifyResponse{
		ModeratorID: sess.ModeratorID,
		Role:        string(sess.Role),
		Sections:    sectionNames(s.acl.Sections(sess.Role)),
	}, nil
}

// EnsureModerator creates the account or brings an existing one in line with
// the given credentials and role.
func (s *AuthService) EnsureModerator(ctx context.Context, username, password, name string, role access.Role) (*models.Moderator, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("moderator username and password are required")
	}
	if !role.Valid() {
		return nil, invalid("unknown moderator role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var mod models.Moderator
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).Take(&mod).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			mod = models.Moderator{
				Username:     username,
				Name:         name,
				PasswordHash: string(hash),
				Role:         string(role),
				Active:       true,
			}
			return tx.Create(&mod).Error
		}
		if err != nil {
			return err
		}
		mod.Name = name
		mod.PasswordHash = string(hash)
		mod.Role = string(role)
		mod.Active = true
		return tx.Model(&mod).Select("name", "password_hash", "role", "active").Updates(&mod).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store moderator %s: %w", username, err)
	}
	return &mod, nil
}

// SeedModerators provisions the configured administrator and users-only
// accounts. Accounts without a username are skipped.
func (s *AuthService) SeedModerators(ctx context.Context) error {
	seeds := []struct {
		username, password, name string
		role                     access.Role
	}{
		{s.cfg.AdminUsername, s.cfg.AdminPassword, s.cfg.AdminName, access.RoleFull},
		{s.cfg.UsersOnlyUsername, s.cfg.UsersOnlyPassword, s.cfg.UsersOnlyName, access.RoleUsersOnly},
	}
	for _, seed := range seeds {
		if seed.username == "" {
			continue
		}
		mod, err := s.EnsureModerator(ctx, seed.username, seed.password, seed.name, seed.role)
		if err != nil {
			return err
		}
		slog.Info("moderator account provisioned", "moderator_id", mod.ID, "username", mod.Username, "role", mod.Role)
	}
	return nil
}

func sectionNames(sections []access.Section) []string {
	names := make([]string, len(sections))
	for i, sec := range sections {
		names[i] = string(sec)
	}
	return names
}
