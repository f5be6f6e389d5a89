package jobs

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

// JobResponse is a wrapper for the Job struct to include API links
type JobResponse struct {
	Job
	Links map[string]string `json:"_links"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) response(c *fiber.Ctx, job *Job) *JobResponse {
	baseURL := c.BaseURL()
	return &JobResponse{
		Job: h.service.Snapshot(job),
		Links: map[string]string{
			"self":   fmt.Sprintf("%s/jobs/%s", baseURL, job.ID),
			"logs":   fmt.Sprintf("%s/jobs/%s/logs", baseURL, job.ID),
			"cancel": fmt.Sprintf("%s/jobs/%s/cancel", baseURL, job.ID),
		},
	}
}

func (h *Handler) HandleJobStatus(c *fiber.Ctx) error {
	jobID := c.Params("id")
	job, exists := h.service.GetJob(jobID)
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	return c.JSON(h.response(c, job))
}

func (h *Handler) HandleJobLogs(c *fiber.Ctx) error {
	jobID := c.Params("id")
	job, exists := h.service.GetJob(jobID)
	if !exists {
		return c.Status(fiber.StatusNotFound).SendString("Job not found")
	}

	if job.LogPath == "" {
		return c.SendString("No logs for this job.")
	}

	logContent, err := os.ReadFile(job.LogPath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to read log file.")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Send(logContent)
}

// HandleJobList returns every known job, newest first. ?status= filters by
// job status.
func (h *Handler) HandleJobList(c *fiber.Ctx) error {
	jobs := h.service.GetJobs()
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	status := JobStatus(c.Query("status"))
	responses := make([]*JobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp := h.response(c, job)
		if status != "" && resp.Status != status {
			continue
		}
		responses = append(responses, resp)
	}
	return c.JSON(responses)
}

func (h *Handler) HandleCancelJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if _, exists := h.service.GetJob(jobID); !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "job not found"})
	}
	if err := h.service.CancelJob(jobID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	job, _ := h.service.GetJob(jobID)
	return c.JSON(h.response(c, job))
}

func (h *Handler) HandleCleanupJobs(c *fiber.Ctx) error {
	h.service.CleanupOldJobs(24 * time.Hour)
	return c.JSON(fiber.Map{"status": "cleanup completed"})
}

func (h *Handler) HandleClearFinishedJobs(c *fiber.Ctx) error {
	cleared := h.service.ClearFinishedJobs()
	return c.JSON(fiber.Map{"status": "finished jobs cleared", "cleared": cleared})
}
