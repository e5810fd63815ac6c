package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal/internal/service"
)

func (h HandlerSet) CreateJob(c *gin.Context) {
	var req service.CreateJobInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	job, err := h.jobs.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

// ListJobs serves one page of postings. The page size is fixed by configuration.
func (h HandlerSet) ListJobs(c *gin.Context) {
	page, err := service.ParsePage(c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.jobs.List(c.Request.Context(), page, c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h HandlerSet) UpdateJob(c *gin.Context) {
	var req service.UpdateJobInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h HandlerSet) DeleteJob(c *gin.Context) {
	if err := h.jobs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job deleted successfully"})
}

func (h HandlerSet) ViewJob(c *gin.Context) {
	job, err := h.jobs.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h HandlerSet) ListJobApplications(c *gin.Context) {
	apps, err := h.jobs.ApplicationsForJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": apps})
}
