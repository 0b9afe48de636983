// Package access decides which moderator operations a session may perform.
//
// Every service entry point calls Evaluator.Authorize with the session
// resolved for the current request, so the role restrictions hold no matter
// which client issued the call.
package access

import (
	"errors"
	"fmt"

	"github.com/mikespook/gorbac"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not permitted for this role")
)

// Role is a moderator access level.
type Role string

const (
	RoleFull      Role = "full"
	RoleUsersOnly Role = "users_only"
)

func (r Role) Valid() bool {
	return r == RoleFull || r == RoleUsersOnly
}

// Resource is the kind of entity an operation touches.
type Resource string

const (
	ResourceCity       Resource = "city"
	ResourceSchool     Resource = "school"
	ResourcePost       Resource = "post"
	ResourceSpotted    Resource = "spotted"
	ResourceUser       Resource = "user"
	ResourceStatistics Resource = "statistics"
)

type Action string

const (
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionModerate Action = "moderate"
)

var (
	allResources = []Resource{ResourceCity, ResourceSchool, ResourcePost, ResourceSpotted, ResourceUser, ResourceStatistics}
	allActions   = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionModerate}
)

// Operation names one thing a moderator asks to do.
type Operation struct {
	Resource Resource
	Action   Action
}

func Op(resource Resource, action Action) Operation {
	return Operation{Resource: resource, Action: action}
}

func (o Operation) String() string {
	return string(o.Resource) + ":" + string(o.Action)
}

// Session is the authenticated identity of one request. It is built fresh for
// every request and never outlives it.
type Session struct {
	ModeratorID uint
	Role        Role
}

func (s *Session) valid() bool {
	return s != nil && s.ModeratorID != 0 && s.Role != ""
}

// Evaluator holds the role/permission graph.
type Evaluator struct {
	rbac        *gorbac.RBAC
	permissions map[Operation]gorbac.Permission
	onDenied    func(role Role, op Operation)
}

// NewEvaluator builds the fixed policy: full may do everything, users_only
// may only read and update users.
func NewEvaluator() (*Evaluator, error) {
	e := &Evaluator{
		rbac:        gorbac.New(),
		permissions: make(map[Operation]gorbac.Permission),
	}

	for _, res := range allResources {
		for _, act := range allActions {
			op := Op(res, act)
			e.permissions[op] = gorbac.NewStdPermission(op.String())
		}
	}

	full := gorbac.NewStdRole(string(RoleFull))
	for _, p := range e.permissions {
		if err := full.Assign(p); err != nil {
			return nil, fmt.Errorf("failed to assign %s to %s: %w", p.ID(), RoleFull, err)
		}
	}

	usersOnly := gorbac.NewStdRole(string(RoleUsersOnly))
	for _, op := range []Operation{Op(ResourceUser, ActionRead), Op(ResourceUser, ActionUpdate)} {
		if err := usersOnly.Assign(e.permissions[op]); err != nil {
			return nil, fmt.Errorf("failed to assign %s to %s: %w", op, RoleUsersOnly, err)
		}
	}

	for _, role := range []gorbac.Role{full, usersOnly} {
		if err := e.rbac.Add(role); err != nil {
			return nil, fmt.Errorf("failed to register role %s: %w", role.ID(), err)
		}
	}
	return e, nil
}

// OnDenied registers a callback invoked for every Forbidden decision.
func (e *Evaluator) OnDenied(fn func(role Role, op Operation)) {
	e.onDenied = fn
}

// Authorize returns nil when the session may perform op, ErrUnauthenticated
// when there is no usable session and ErrForbidden otherwise.
func (e *Evaluator) Authorize(sess *Session, op Operation) error {
	if !sess.valid() {
		return ErrUnauthenticated
	}
	if e.Allowed(sess.Role, op) {
		return nil
	}
	if e.onDenied != nil {
		e.onDenied(sess.Role, op)
	}
	return fmt.Errorf("%w: %s cannot %s", ErrForbidden, sess.Role, op)
}

func (e *Evaluator) Allowed(role Role, op Operation) bool {
	p, ok := e.permissions[op]
	if !ok {
		return false
	}
	return e.rbac.IsGranted(string(role), p, nil)
}

// Section is a dashboard area, named the way the client names its views.
type Section string

const (
	SectionCities     Section = "cities"
	SectionSchools    Section = "schools"
	SectionPosts      Section = "posts"
	SectionSpotted    Section = "spotted"
	SectionUsers      Section = "users"
	SectionStatistics Section = "statistics"
)

var sectionResources = []struct {
	section  Section
	resource Resource
}{
	{SectionStatistics, ResourceStatistics},
	{SectionPosts, ResourcePost},
	{SectionSpotted, ResourceSpotted},
	{SectionCities, ResourceCity},
	{SectionSchools, ResourceSchool},
	{SectionUsers, ResourceUser},
}

// Sections lists the views a role can open. A view is reachable when the
// role may read its resource.
func (e *Evaluator) Sections(role Role) []Section {
	sections := make([]Section, 0, len(sectionResources))
	for _, sr := range sectionResources {
		if e.Allowed(role, Op(sr.resource, ActionRead)) {
			sections = append(sections, sr.section)
		}
	}
	return sections
}
