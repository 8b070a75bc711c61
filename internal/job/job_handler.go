package job

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lumahq/dispatch/common"
	"github.com/lumahq/dispatch/internal/config"
	"github.com/lumahq/dispatch/internal/dto"
	"github.com/lumahq/dispatch/middleware"
)

type JobHandler struct {
	service JobServiceInterface
}

func NewJobHandler(s JobServiceInterface) *JobHandler {
	return &JobHandler{service: s}
}

var _ JobHandlerInterface = (*JobHandler)(nil)

// Create handles HTTP requests for scheduling a new job.
// It validates and binds the request body, delegates to the JobService,
// and returns HTTP 201 with the new job id on success.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.JobCreateDTO

	if !middleware.Bind(c, &req) {
		c.Abort()
		return
	}

	id, err := h.service.CreateJob(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusCreated, dto.JobCreatedDTO{
		ID:     id,
		Status: string(config.JobStatusPending),
	})
}

// Get handles HTTP requests to fetch a job by its ID.
// It validates the job ID, calls the JobService, and returns
// HTTP 200 with the job data on success or an appropriate error code.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, common.APIError{Message: "Invalid ID"})
		return
	}

	resp, err := h.service.GetJobByID(c.Request.Context(), uint(id))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// List handles HTTP requests to retrieve all jobs created by a user.
// It validates the user_id query parameter, fetches jobs via JobService,
// and returns them as JSON with HTTP 200.
func (h *JobHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, common.APIError{Message: "user_id parameter is required"})
		return
	}

	jobs, err := h.service.ListJobsByUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, jobs)
}
