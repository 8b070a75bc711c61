package job_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lumahq/dispatch/common"
	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/dto"
	"github.com/lumahq/dispatch/internal/job"
	"github.com/lumahq/dispatch/internal/mocks"
	"github.com/lumahq/dispatch/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func jobRouter(service job.JobServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	handler := job.NewJobHandler(service)
	r.POST("/jobs", handler.Create)
	r.GET("/jobs", handler.List)
	r.GET("/jobs/:id", handler.Get)
	return r
}

func TestJobHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
	}{
		{
			name: "successful job creation",
			body: `{"user_id":"user1","type":"document_embedding","payload":{"document_id":42,"text":"hello"}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("CreateJob", mock.Anything, mock.Anything).Return(uint(11), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid request body JSON",
			body:           "{invalid json}",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing required fields",
			body:           `{"type":"document_embedding"}`,
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid job type",
			body: `{"user_id":"user1","type":"send_fax","payload":{"x":1}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("CreateJob", mock.Anything, mock.Anything).
					Return(uint(0), common.NewAPIError(http.StatusBadRequest, "invalid job type", map[string]any{
						"provided": "send_fax",
					}))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "database connection error",
			body: `{"user_id":"user1","type":"document_embedding","payload":{"document_id":42,"text":"hello"}}`,
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("CreateJob", mock.Anything, mock.Anything).
					Return(uint(0), common.Errf(http.StatusInternalServerError, "failed to add job to database"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.JobServiceMock)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			jobRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Status code mismatch for test: %s", tt.name)
			mockService.AssertExpectations(t)
		})
	}
}

func TestJobHandler_Create_ResponseBody(t *testing.T) {
	mockService := new(mocks.JobServiceMock)
	mockService.On("CreateJob", mock.Anything, mock.Anything).Return(uint(11), nil)

	body := `{"user_id":"user1","type":"document_embedding","payload":{"document_id":42,"text":"hello"}}`
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	jobRouter(mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":11,"status":"pending"}`, w.Body.String())
}

func TestJobHandler_Get(t *testing.T) {
	validJobResponse := &dto.JobResponseDTO{
		ID:          1,
		UserID:      "user1",
		Type:        string(config.JobTypeDocumentEmbedding),
		Payload:     json.RawMessage(`{"document_id":42,"text":"hello"}`),
		Status:      string(config.JobStatusPending),
		Attempts:    0,
		MaxAttempts: 3,
	}

	tests := []struct {
		name           string
		jobID          string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
	}{
		{
			name:  "successful fetch",
			jobID: "1",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("GetJobByID", mock.Anything, uint(1)).Return(validJobResponse, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid ID param",
			jobID:          "abc",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "job not found",
			jobID: "99",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("GetJobByID", mock.Anything, uint(99)).
					Return(nil, common.Errf(http.StatusNotFound, "job not found"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.JobServiceMock)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/jobs/"+tt.jobID, nil)
			w := httptest.NewRecorder()
			jobRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestJobHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*mocks.JobServiceMock)
		expectedStatus int
	}{
		{
			name:  "successful list",
			query: "?user_id=user1",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("ListJobsByUser", mock.Anything, "user1").Return([]dto.JobResponseDTO{
					{ID: 1, UserID: "user1", Status: string(config.JobStatusPending)},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing user_id",
			query:          "",
			setupMock:      func(m *mocks.JobServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "service error",
			query: "?user_id=user1",
			setupMock: func(m *mocks.JobServiceMock) {
				m.On("ListJobsByUser", mock.Anything, "user1").
					Return(nil, common.Errf(http.StatusInternalServerError, "failed to list jobs"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(mocks.JobServiceMock)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/jobs"+tt.query, nil)
			w := httptest.NewRecorder()
			jobRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
