package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbelardoOk/PlanTracker/internal/modules/serializer"
	"github.com/AbelardoOk/PlanTracker/internal/modules/service"
)

func TestRenderErr(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "validation error carries fields",
			err:            service.Invalid("date", "required unless use_now is set"),
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "validation failed",
		},
		{
			name:           "wrapped not found",
			err:            fmt.Errorf("load: %w", service.ErrPlantNotFound),
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "load: plant not found",
		},
		{
			name:           "forbidden is a bare denial",
			err:            service.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "access denied",
		},
		{
			name:           "owner only delete explains itself",
			err:            service.ErrNotOwner,
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "only the project owner can delete it",
		},
		{
			name:           "bad credentials",
			err:            service.ErrInvalidCredentials,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "invalid username or password",
		},
		{
			name:           "anything else",
			err:            errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter()
			router.GET("/", func(c *gin.Context) { renderErr(c, tt.err) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var res serializer.Response
			require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, tt.expectedStatus, res.Code)
			assert.Equal(t, tt.expectedMsg, res.Msg)
		})
	}
}

func TestRenderErr_ValidationData(t *testing.T) {
	router := setupRouter()
	router.GET("/", func(c *gin.Context) {
		v := &service.ValidationError{}
		v.Add("password_confirm", "passwords do not match")
		v.Add("email", "email must end with @gmail.com")
		renderErr(c, v.Err())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var res struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, map[string]string{
		"password_confirm": "passwords do not match",
		"email":            "email must end with @gmail.com",
	}, res.Data)
}

func TestPathID_Malformed(t *testing.T) {
	router := setupRouter()
	router.GET("/plants/:plant_id", func(c *gin.Context) {
		if _, ok := pathID(c, "plant_id"); ok {
			c.Status(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plants/PA001", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid plant_id")
}
