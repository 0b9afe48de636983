package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator()
	require.NoError(t, err)
	return e
}

func TestAuthorizeFullRole(t *testing.T) {
	e := newEvaluator(t)
	sess := &Session{ModeratorID: 1, Role: RoleFull}

	for _, res := range allResources {
		for _, act := range allActions {
			require.NoError(t, e.Authorize(sess, Op(res, act)), "%s:%s", res, act)
		}
	}
}

func TestAuthorizeUsersOnlyRole(t *testing.T) {
	e := newEvaluator(t)
	sess := &Session{ModeratorID: 2, Role: RoleUsersOnly}

	require.NoError(t, e.Authorize(sess, Op(ResourceUser, ActionRead)))
	require.NoError(t, e.Authorize(sess, Op(ResourceUser, ActionUpdate)))

	denied := []Operation{
		Op(ResourceCity, ActionRead),
		Op(ResourceCity, ActionCreate),
		Op(ResourceCity, ActionDelete),
		Op(ResourceSchool, ActionUpdate),
		Op(ResourcePost, ActionModerate),
		Op(ResourcePost, ActionRead),
		Op(ResourceSpotted, ActionDelete),
		Op(ResourceStatistics, ActionRead),
	}
	for _, op := range denied {
		err := e.Authorize(sess, op)
		assert.True(t, errors.Is(err, ErrForbidden), "%s should be forbidden, got %v", op, err)
	}
}

func TestAuthorizeWithoutSession(t *testing.T) {
	e := newEvaluator(t)

	cases := []*Session{
		nil,
		{},
		{ModeratorID: 3},
		{Role: RoleFull},
	}
	for _, sess := range cases {
		err := e.Authorize(sess, Op(ResourceUser, ActionRead))
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.NotErrorIs(t, err, ErrForbidden)
	}
}

func TestAuthorizeUnknownRole(t *testing.T) {
	e := newEvaluator(t)
	err := e.Authorize(&Session{ModeratorID: 4, Role: "superuser"}, Op(ResourceUser, ActionRead))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestOnDeniedCallback(t *testing.T) {
	e := newEvaluator(t)
	var got []Operation
	e.OnDenied(func(role Role, op Operation) {
		assert.Equal(t, RoleUsersOnly, role)
		got = append(got, op)
	})

	sess := &Session{ModeratorID: 5, Role: RoleUsersOnly}
	_ = e.Authorize(sess, Op(ResourceCity, ActionCreate))
	_ = e.Authorize(sess, Op(ResourceUser, ActionRead))

	assert.Equal(t, []Operation{Op(ResourceCity, ActionCreate)}, got)
}

func TestSections(t *testing.T) {
	e := newEvaluator(t)

	assert.Equal(t, []Section{SectionUsers}, e.Sections(RoleUsersOnly))
	assert.Equal(t, []Section{
		SectionStatistics, SectionPosts, SectionSpotted, SectionCities, SectionSchools, SectionUsers,
	}, e.Sections(RoleFull))
	assert.Empty(t, e.Sections("nobody"))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleFull.Valid())
	assert.True(t, RoleUsersOnly.Valid())
	assert.False(t, Role("admin").Valid())
}

func TestEvaluatorsAreIndependent(t *testing.T) {
	a := newEvaluator(t)
	b := newEvaluator(t)

	var denied int
	a.OnDenied(func(Role, Operation) { denied++ })
	sess := &Session{ModeratorID: 6, Role: RoleUsersOnly}

	assert.ErrorIs(t, b.Authorize(sess, Op(ResourceCity, ActionRead)), ErrForbidden)
	assert.Zero(t, denied)
	assert.ErrorIs(t, a.Authorize(sess, Op(ResourceCity, ActionRead)), ErrForbidden)
	assert.Equal(t, 1, denied)
}
