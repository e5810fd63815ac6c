package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"jobportal/internal/apperr"
	"jobportal/internal/service"
)

// multipartOverhead leaves room for the text fields next to the resume part.
const multipartOverhead = 1 << 20

func (h HandlerSet) SubmitApplication(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Upload.MaxResumeBytes+multipartOverhead)

	input := service.SubmitInput{
		JobID:         c.PostForm("jobId"),
		CandidateName: c.PostForm("candidateName"),
		Email:         c.PostForm("email"),
		Status:        c.PostForm("status"),
	}

	file, header, err := c.Request.FormFile("resume")
	switch {
	case err == nil:
		defer file.Close()
		input.Resume = &service.ResumeUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		}
	case errors.Is(err, http.ErrMissingFile):
		// left nil; the service reports the missing resume
	default:
		h.fail(c, multipartError(err))
		return
	}

	app, err := h.applications.Submit(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func multipartError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return apperr.New(apperr.KindPayloadTooLarge, "request body too large")
	}
	return apperr.Wrap(err, apperr.KindValidation, "invalid multipart form")
}

func (h HandlerSet) GetApplication(c *gin.Context) {
	app, err := h.applications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h HandlerSet) TransitionApplication(c *gin.Context) {
	var req transitionRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	app, err := h.applications.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
