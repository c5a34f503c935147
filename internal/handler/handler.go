package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Joyersch/jellydump/internal/registry"
	"github.com/Joyersch/jellydump/internal/runner"
	"github.com/Joyersch/jellydump/internal/version"
	"github.com/Joyersch/jellydump/pkg/logger"
)

// Handler handles HTTP requests.
type Handler struct {
	registry *registry.Registry
	runner   *runner.Runner
}

// New creates a new Handler and registers the custom request validators.
func New(reg *registry.Registry, run *runner.Runner) *Handler {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("imdbid", validIMDBID)
	}

	return &Handler{
		registry: reg,
		runner:   run,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/pull", h.Pull)
	r.GET("/status/:job_id", h.Status)

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.GET("/version", h.Version)
	}
}

// Health returns service health status.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Version returns service version.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": version.Version})
}

// PullRequest is the request body for starting a download job.
type PullRequest struct {
	URL    string `json:"url" binding:"required,url"`
	IMDBID string `json:"imdbid" binding:"required,imdbid"`
	Name   string `json:"name" binding:"required"`
	Season int    `json:"season" binding:"required,gte=1"`
}

// validIMDBID accepts ids like "tt0111161".
func validIMDBID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return strings.HasPrefix(id, "tt") && len(id) >= 7
}

// Pull creates a new download job and starts it in the background.
func (h *Handler) Pull(c *gin.Context) {
	var req PullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationDetail(err)})
		return
	}

	jobID, err := h.registry.Create(registry.Request{
		URL:    req.URL,
		IMDBID: req.IMDBID,
		Name:   req.Name,
		Season: req.Season,
	})
	if err != nil {
		if errors.Is(err, registry.ErrActiveJob) {
			c.JSON(http.StatusConflict, gin.H{
				"detail": "Another download is already in progress. Please wait or cancel it.",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	h.runner.Start(jobID, registry.Request{
		URL:    req.URL,
		IMDBID: req.IMDBID,
		Name:   req.Name,
		Season: req.Season,
	})

	logger.Infof("📥 Job created: %s (%s S%02d)", jobID, req.Name, req.Season)

	c.JSON(http.StatusOK, gin.H{
		"job_id":  jobID,
		"status":  registry.StatusPending,
		"message": "Download started.",
	})
}

// Status returns the current state of a job. The response shape depends on
// the job's status: progress fields appear once reported, terminal states
// add their result or error fields.
func (h *Handler) Status(c *gin.Context) {
	job, err := h.registry.Get(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Job ID not found"})
		return
	}

	resp := gin.H{
		"job_id":     job.ID,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	}

	if job.ProgressPercent != nil {
		resp["progress_percent"] = *job.ProgressPercent
	}
	if job.CurrentTitle != "" {
		resp["current_title"] = job.CurrentTitle
	}
	if job.Speed != "" {
		resp["speed"] = job.Speed
	}
	if job.CurrentEpisode != nil {
		resp["current_episode"] = *job.CurrentEpisode
	}

	switch job.Status {
	case registry.StatusPending, registry.StatusRunning:
		resp["message"] = "Job is still processing."
	case registry.StatusFinished:
		resp["finished_at"] = job.FinishedAt
		resp["result_path"] = job.ResultPath
		resp["message"] = job.Message
	case registry.StatusFailed:
		resp["finished_at"] = job.FinishedAt
		resp["error"] = job.Error
	}

	c.JSON(http.StatusOK, resp)
}

// validationDetail flattens binding errors into a field → message map so the
// caller sees which field was rejected.
func validationDetail(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = validationMessage(fe)
	}
	return fields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "url":
		return "must be a valid URL"
	case "imdbid":
		return "invalid IMDb ID (expected format like 'tt0111161')"
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "invalid value"
	}
}
