package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
)

const testPepper = "test-pepper"

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppCfg{Name: "plantracker-test"},
		S3:  config.S3Cfg{MaxPhotoBytes: 1 << 10, PresignExpireSec: 60},
		RabbitMQ: config.RabbitMQCfg{
			RoutingKey: config.RabbitMQRoutingKey{
				ProjectCreated: "project.created",
				ProjectDeleted: "project.deleted",
				PlantCreated:   "plant.created",
				PlantDeleted:   "plant.deleted",
				VisitorCreated: "visitor.created",
			},
		},
		Auth: config.AuthCfg{
			SecretPepper:        testPepper,
			SessionTokenPrefix:  "pt_",
			SessionTTLSec:       3600,
			AllowedEmailDomains: []string{"gmail.com"},
		},
	}
}

var nopLog = zap.NewNop()

var pngPhoto = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// MockUserRepo is a mock implementation of repo.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) ListByUsernames(ctx context.Context, usernames []string) ([]model.User, error) {
	args := m.Called(ctx, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockSessionRepo is a mock implementation of repo.SessionRepo
type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(ctx context.Context, lookup string, s *repo.Session, ttl time.Duration) error {
	args := m.Called(ctx, lookup, s, ttl)
	return args.Error(0)
}

func (m *MockSessionRepo) Get(ctx context.Context, lookup string) (*repo.Session, error) {
	args := m.Called(ctx, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.Session), args.Error(1)
}

func (m *MockSessionRepo) Delete(ctx context.Context, lookup string) error {
	args := m.Called(ctx, lookup)
	return args.Error(0)
}

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetWithPlants(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListOwned(ctx context.Context, ownerID uuid.UUID, f repo.ProjectFilter) ([]model.Project, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListShared(ctx context.Context, userID uuid.UUID, f repo.ProjectFilter) ([]model.Project, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

func (m *MockProjectRepo) Delete(ctx context.Context, projectID uuid.UUID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockProjectRepo) PhotoKeys(ctx context.Context, projectID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPlantRepo is a mock implementation of repo.PlantRepo
type MockPlantRepo struct {
	mock.Mock
}

func (m *MockPlantRepo) Create(ctx context.Context, p *model.Plant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlantRepo) Get(ctx context.Context, plantID uuid.UUID) (*model.Plant, error) {
	args := m.Called(ctx, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plant), args.Error(1)
}

func (m *MockPlantRepo) GetWithVisitors(ctx context.Context, plantID uuid.UUID) (*model.Plant, error) {
	args := m.Called(ctx, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plant), args.Error(1)
}

func (m *MockPlantRepo) Delete(ctx context.Context, plantID uuid.UUID) error {
	args := m.Called(ctx, plantID)
	return args.Error(0)
}

func (m *MockPlantRepo) PhotoKeys(ctx context.Context, plantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockVisitorRepo is a mock implementation of repo.VisitorRepo
type MockVisitorRepo struct {
	mock.Mock
}

func (m *MockVisitorRepo) Create(ctx context.Context, v *model.Visitor) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVisitorRepo) Get(ctx context.Context, visitorID uuid.UUID) (*model.Visitor, error) {
	args := m.Called(ctx, visitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Visitor), args.Error(1)
}

func (m *MockVisitorRepo) List(ctx context.Context, f repo.VisitorFilter) ([]model.Visitor, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Visitor), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

// fixture is a project owned by owner with one collaborator.
type fixture struct {
	owner, collaborator, outsider uuid.UUID
	project                       *model.Project
}

func newFixture() fixture {
	f := fixture{owner: uuid.New(), collaborator: uuid.New(), outsider: uuid.New()}
	f.project = &model.Project{
		ID:            uuid.New(),
		OwnerID:       f.owner,
		Name:          "Mata Atlântica",
		Collaborators: []model.User{{ID: f.collaborator, Username: "bia"}},
	}
	return f
}

func (f fixture) plant() *model.Plant {
	return &model.Plant{ID: uuid.New(), ProjectID: f.project.ID, Name: "Rosa", Code: "PA001", Project: f.project}
}
