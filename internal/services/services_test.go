package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/access"
	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	fullSession      = &access.Session{ModeratorID: 1, Role: access.RoleFull}
	usersOnlySession = &access.Session{ModeratorID: 2, Role: access.RoleUsersOnly}
)

type fixture struct {
	db  *gorm.DB
	acl *access.Evaluator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	acl, err := access.NewEvaluator()
	require.NoError(t, err)
	return &fixture{db: testutil.NewDB(t), acl: acl}
}
