package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AbelardoOk/PlanTracker/internal/config"
	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/repo"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
	"github.com/AbelardoOk/PlanTracker/internal/pkg/export"
)

// MockUserService is a mock implementation of service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (*service.LoginOutput, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginOutput), args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockUserService) Authenticate(ctx context.Context, token string) (*repo.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.Session), args.Error(1)
}

// MockProjectService is a mock implementation of service.ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, actor uuid.UUID, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) ListHome(ctx context.Context, actor uuid.UUID, f repo.ProjectFilter) (*service.HomeOutput, error) {
	args := m.Called(ctx, actor, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HomeOutput), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, actor uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, actor, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, actor uuid.UUID, projectID uuid.UUID) error {
	args := m.Called(ctx, actor, projectID)
	return args.Error(0)
}

// MockPlantService is a mock implementation of service.PlantService
type MockPlantService struct {
	mock.Mock
}

func (m *MockPlantService) Create(ctx context.Context, actor uuid.UUID, projectID uuid.UUID, in service.CreatePlantInput) (*model.Plant, error) {
	args := m.Called(ctx, actor, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plant), args.Error(1)
}

func (m *MockPlantService) Get(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) (*model.Plant, error) {
	args := m.Called(ctx, actor, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plant), args.Error(1)
}

func (m *MockPlantService) Delete(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) error {
	args := m.Called(ctx, actor, plantID)
	return args.Error(0)
}

func (m *MockPlantService) Photo(ctx context.Context, actor uuid.UUID, plantID uuid.UUID) (*service.Photo, error) {
	args := m.Called(ctx, actor, plantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Photo), args.Error(1)
}

// MockVisitorService is a mock implementation of service.VisitorService
type MockVisitorService struct {
	mock.Mock
}

func (m *MockVisitorService) Create(ctx context.Context, actor uuid.UUID, plantID uuid.UUID, in service.CreateVisitorInput) (*model.Visitor, error) {
	args := m.Called(ctx, actor, plantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Visitor), args.Error(1)
}

func (m *MockVisitorService) List(ctx context.Context, actor uuid.UUID, in service.ListVisitorsInput) ([]model.Visitor, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Visitor), args.Error(1)
}

func (m *MockVisitorService) Export(ctx context.Context, actor uuid.UUID, in service.ListVisitorsInput, format export.Format, w io.Writer) (int, error) {
	args := m.Called(ctx, actor, in, format, w)
	return args.Int(0), args.Error(1)
}

func (m *MockVisitorService) Photo(ctx context.Context, actor uuid.UUID, visitorID uuid.UUID) (*service.Photo, error) {
	args := m.Called(ctx, actor, visitorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Photo), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asActor runs h with the given user set as the authenticated actor.
func asActor(userID uuid.UUID, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ActorKey, &repo.Session{UserID: userID, Username: "ana"})
		h(c)
	}
}

func testConfig() *config.Config {
	return &config.Config{S3: config.S3Cfg{MaxPhotoBytes: 1 << 10}}
}

// multipartBody encodes fields (repeated keys allowed) and an optional photo.
func multipartBody(t *testing.T, fields [][2]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range fields {
		require.NoError(t, w.WriteField(f[0], f[1]))
	}
	if photo != nil {
		fw, err := w.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}
