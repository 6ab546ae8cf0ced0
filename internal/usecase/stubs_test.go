package usecase

import (
	"context"
	"errors"

	"github.com/Rud356/test-task-auth-demo/internal/core/domain"
	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/repository"
)

// Shared in-memory stubs used across service tests.

type userRepoStub struct {
	users    map[string]domain.UserDetailed
	sessions map[string]string // session id -> user id

	registerErr        error
	registeredData     []port.RegistrationData
	registeredBundles  []domain.PermissionBundle
	loginSession       *domain.Session
	loginErr           error
	lastFilter         port.UserFilter
	updateErr          error
	terminateResult    bool
	terminateErr       error
	passwordResult     bool
	passwordErr        error
	sessionKillResult  bool
	sessionKillErr     error
	sessionsKillResult bool
	sessionsKillErr    error
	killedSessions     []string
	killedUsers        []string
}

func (m *userRepoStub) Register(_ context.Context, data port.RegistrationData, permissions domain.PermissionBundle) (domain.User, error) {
	if m.registerErr != nil {
		return domain.User{}, m.registerErr
	}
	m.registeredData = append(m.registeredData, data)
	m.registeredBundles = append(m.registeredBundles, permissions)
	return domain.User{ID: "new-user", Name: data.Name, Surname: data.Surname, IsActive: true}, nil
}

func (m *userRepoStub) GetByID(_ context.Context, userID string) (*domain.UserDetailed, error) {
	if user, ok := m.users[userID]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoStub) GetBySession(_ context.Context, sessionID string) (*domain.UserDetailed, error) {
	userID, ok := m.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if user, ok := m.users[userID]; ok {
		return &user, nil
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoStub) List(_ context.Context, filter port.UserFilter) ([]domain.UserDetailed, error) {
	m.lastFilter = filter
	users := make([]domain.UserDetailed, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	return users, nil
}

func (m *userRepoStub) UpdateDetails(_ context.Context, patch port.UserPatch) (*domain.UserDetailed, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	user, ok := m.users[patch.UserID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Surname != nil {
		user.Surname = *patch.Surname
	}
	if patch.ThirdName != nil {
		user.ThirdName = patch.ThirdName
	}
	m.users[patch.UserID] = user
	return &user, nil
}

func (m *userRepoStub) Terminate(_ context.Context, userID string) (bool, error) {
	if m.terminateErr != nil {
		return false, m.terminateErr
	}
	return m.terminateResult, nil
}

func (m *userRepoStub) ChangePassword(_ context.Context, userID string, newPassword string) (bool, error) {
	if m.passwordErr != nil {
		return false, m.passwordErr
	}
	return m.passwordResult, nil
}

func (m *userRepoStub) Login(_ context.Context, email string, password string) (*domain.Session, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	if m.loginSession == nil {
		return nil, repository.ErrNotFound
	}
	return m.loginSession, nil
}

func (m *userRepoStub) TerminateSession(_ context.Context, sessionID string) (bool, error) {
	if m.sessionKillErr != nil {
		return false, m.sessionKillErr
	}
	m.killedSessions = append(m.killedSessions, sessionID)
	return m.sessionKillResult, nil
}

func (m *userRepoStub) TerminateAllSessions(_ context.Context, userID string) (bool, error) {
	if m.sessionsKillErr != nil {
		return false, m.sessionsKillErr
	}
	m.killedUsers = append(m.killedUsers, userID)
	return m.sessionsKillResult, nil
}

type roleRepoStub struct {
	roles map[int64]domain.Role

	createErr    error
	updateErr    error
	deleteErr    error
	assignResult bool
	assignErr    error
	removeResult bool
	removeErr    error
	assignments  map[string][]int64
}

func (m *roleRepoStub) List(_ context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(m.roles))
	for _, role := range m.roles {
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *roleRepoStub) Create(_ context.Context, name string) (domain.Role, error) {
	if m.createErr != nil {
		return domain.Role{}, m.createErr
	}
	if m.roles == nil {
		m.roles = make(map[int64]domain.Role)
	}
	role := domain.Role{ID: int64(len(m.roles) + 1), Name: name}
	m.roles[role.ID] = role
	return role, nil
}

func (m *roleRepoStub) Update(_ context.Context, role domain.Role) (domain.Role, error) {
	if m.updateErr != nil {
		return domain.Role{}, m.updateErr
	}
	if _, ok := m.roles[role.ID]; !ok {
		return domain.Role{}, repository.ErrNotFound
	}
	m.roles[role.ID] = role
	return role, nil
}

func (m *roleRepoStub) Delete(_ context.Context, roleID int64) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	if _, ok := m.roles[roleID]; !ok {
		return false, repository.ErrNotFound
	}
	delete(m.roles, roleID)
	return true, nil
}

func (m *roleRepoStub) AssignToUser(_ context.Context, userID string, roleID int64) (bool, error) {
	if m.assignErr != nil {
		return false, m.assignErr
	}
	if m.assignResult {
		if m.assignments == nil {
			m.assignments = make(map[string][]int64)
		}
		m.assignments[userID] = append(m.assignments[userID], roleID)
	}
	return m.assignResult, nil
}

func (m *roleRepoStub) RemoveFromUser(_ context.Context, userID string, roleID int64) (bool, error) {
	if m.removeErr != nil {
		return false, m.removeErr
	}
	return m.removeResult, nil
}

type resourceRepoStub struct {
	resources map[int64]domain.ResourceDetails

	createErr   error
	editErr     error
	lastFilter  port.ResourceFilter
	grantResult bool
	grantErr    error
	lastGrant   port.RoleGrantUpdate
}

func (m *resourceRepoStub) Create(_ context.Context, authorID string, content string) (domain.Resource, error) {
	if m.createErr != nil {
		return domain.Resource{}, m.createErr
	}
	if m.resources == nil {
		m.resources = make(map[int64]domain.ResourceDetails)
	}
	resource := domain.Resource{ID: int64(len(m.resources) + 1), AuthorID: authorID, Content: content}
	m.resources[resource.ID] = domain.ResourceDetails{Resource: resource}
	return resource, nil
}

func (m *resourceRepoStub) Edit(_ context.Context, resourceID int64, content string) (domain.Resource, error) {
	if m.editErr != nil {
		return domain.Resource{}, m.editErr
	}
	details, ok := m.resources[resourceID]
	if !ok {
		return domain.Resource{}, repository.ErrNotFound
	}
	details.Content = content
	m.resources[resourceID] = details
	return details.Resource, nil
}

func (m *resourceRepoStub) GetByID(_ context.Context, resourceID int64) (*domain.ResourceDetails, error) {
	if details, ok := m.resources[resourceID]; ok {
		return &details, nil
	}
	return nil, repository.ErrNotFound
}

func (m *resourceRepoStub) List(_ context.Context, filter port.ResourceFilter) ([]domain.ResourceDetails, error) {
	m.lastFilter = filter
	resources := make([]domain.ResourceDetails, 0, len(m.resources))
	for _, details := range m.resources {
		resources = append(resources, details)
	}
	return resources, nil
}

func (m *resourceRepoStub) ListAvailable(_ context.Context, userID string, filter port.ResourceFilter) ([]domain.ResourceDetails, error) {
	m.lastFilter = filter
	var resources []domain.ResourceDetails
	for _, details := range m.resources {
		if details.AuthorID == userID {
			resources = append(resources, details)
		}
	}
	return resources, nil
}

func (m *resourceRepoStub) SetRolePermissions(_ context.Context, resourceID int64, grant port.RoleGrantUpdate) (bool, error) {
	if m.grantErr != nil {
		return false, m.grantErr
	}
	m.lastGrant = grant
	return m.grantResult, nil
}

// eventRecorderStub counts published events per kind.
type eventRecorderStub struct {
	registered  int
	terminated  int
	passwords   int
	sessions    int
	assignments int
	publishErr  error
}

func (m *eventRecorderStub) PublishUserRegistered(_ context.Context, _ domain.UserRegisteredEvent) error {
	m.registered++
	return m.publishErr
}

func (m *eventRecorderStub) PublishUserTerminated(_ context.Context, _ domain.UserTerminatedEvent) error {
	m.terminated++
	return m.publishErr
}

func (m *eventRecorderStub) PublishPasswordChanged(_ context.Context, _ domain.PasswordChangedEvent) error {
	m.passwords++
	return m.publishErr
}

func (m *eventRecorderStub) PublishSessionTerminated(_ context.Context, _ domain.SessionTerminatedEvent) error {
	m.sessions++
	return m.publishErr
}

func (m *eventRecorderStub) PublishRoleAssignmentChanged(_ context.Context, _ domain.RoleAssignmentChangedEvent) error {
	m.assignments++
	return m.publishErr
}

var errRepoFailure = errors.New("backend unavailable")
