package read

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/magabrotheeeer/elearning-api/internal/http/response"
	"github.com/magabrotheeeer/elearning-api/internal/models"
	courseservice "github.com/magabrotheeeer/elearning-api/internal/services/course"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, id string) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	oid := bson.NewObjectID()
	course := &models.Course{
		ID:          oid,
		Title:       "Go 101",
		Description: "Basics",
		Level:       "beginner",
		Price:       49.9,
		Lessons:     []string{},
	}

	tests := []struct {
		name       string
		id         string
		setupMocks func(s *ServiceMock)
		wantStatus int
	}{
		{
			name: "existing course",
			id:   oid.Hex(),
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, oid.Hex()).Return(course, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown course",
			id:   bson.NewObjectID().Hex(),
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, mock.Anything).
					Return(nil, courseservice.ErrCourseNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "storage failure",
			id:   oid.Hex(),
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, oid.Hex()).
					Return(nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(ServiceMock)
			tt.setupMocks(service)

			router := chi.NewRouter()
			router.Get("/courses/{id}", New(newNoopLogger(), service).ServeHTTP)

			req := httptest.NewRequest(http.MethodGet, "/courses/"+tt.id, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusOK {
				var resp response.Response
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, response.StatusOK, resp.Status)

				data, err := json.Marshal(resp.Data)
				require.NoError(t, err)
				var got models.Course
				require.NoError(t, json.Unmarshal(data, &got))
				assert.Equal(t, course.Title, got.Title)
				assert.Equal(t, oid.Hex(), got.ID.Hex())
			}
			service.AssertExpectations(t)
		})
	}
}
