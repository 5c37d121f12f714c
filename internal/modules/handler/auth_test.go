package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
)

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*MockUserService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "registered",
			body: `{"username":"ana","email":"ana@gmail.com","password":"s3cret","password_confirm":"s3cret"}`,
			setup: func(svc *MockUserService) {
				svc.On("Register", mock.Anything, service.RegisterInput{
					Username: "ana", Email: "ana@gmail.com", Password: "s3cret", PasswordConfirm: "s3cret",
				}).Return(&model.User{Username: "ana", Email: "ana@gmail.com", PasswordHashPHC: "$argon2id$..."}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"username":"ana"`,
		},
		{
			name: "password mismatch",
			body: `{"username":"ana","email":"ana@gmail.com","password":"a","password_confirm":"b"}`,
			setup: func(svc *MockUserService) {
				svc.On("Register", mock.Anything, mock.Anything).
					Return(nil, service.Invalid("password_confirm", "passwords do not match"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "passwords do not match",
		},
		{
			name:           "malformed json",
			body:           `{"username":`,
			setup:          func(*MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockUserService{}
			tt.setup(svc)

			router := setupRouter()
			router.POST("/auth/register", NewAuthHandler(svc).Register)

			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			assert.NotContains(t, w.Body.String(), "argon2id")
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(*MockUserService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "token issued",
			body: `{"username":"ana","password":"s3cret"}`,
			setup: func(svc *MockUserService) {
				svc.On("Login", mock.Anything, "ana", "s3cret").Return(&service.LoginOutput{
					Token:     "pt_abc",
					ExpiresAt: time.Now().Add(time.Hour),
					User:      &model.User{Username: "ana"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":"pt_abc"`,
		},
		{
			name: "bad credentials are generic",
			body: `{"username":"ana","password":"nope"}`,
			setup: func(svc *MockUserService) {
				svc.On("Login", mock.Anything, "ana", "nope").Return(nil, service.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "invalid username or password",
		},
		{
			name:           "missing password",
			body:           `{"username":"ana"}`,
			setup:          func(*MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "session store down",
			body: `{"username":"ana","password":"s3cret"}`,
			setup: func(svc *MockUserService) {
				svc.On("Login", mock.Anything, "ana", "s3cret").Return(nil, errors.New("redis: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockUserService{}
			tt.setup(svc)

			router := setupRouter()
			router.POST("/auth/login", NewAuthHandler(svc).Login)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	tests := []struct {
		name           string
		header         string
		setup          func(*MockUserService)
		expectedStatus int
	}{
		{
			name:   "revoked",
			header: "Bearer pt_abc",
			setup: func(svc *MockUserService) {
				svc.On("Logout", mock.Anything, "pt_abc").Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no header",
			setup:          func(*MockUserService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "foreign token",
			header: "Bearer sk_other",
			setup: func(svc *MockUserService) {
				svc.On("Logout", mock.Anything, "sk_other").Return(service.ErrUnauthenticated)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockUserService{}
			tt.setup(svc)

			router := setupRouter()
			router.POST("/auth/logout", func(c *gin.Context) { NewAuthHandler(svc).Logout(c) })

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
