package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobportal/internal/apperr"
	"jobportal/internal/middleware"
	"jobportal/internal/models"
	"jobportal/internal/service"
)

type accountResponse struct {
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func newAccountResponse(account models.Account) accountResponse {
	resp := accountResponse{
		UserID:   account.ID,
		Username: account.Username,
		Role:     string(account.Role),
	}
	if !account.CreatedAt.IsZero() {
		createdAt := account.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	account, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration successful",
		"user":    newAccountResponse(account),
	})
}

type loginResponse struct {
	Message     string          `json:"message"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	User        accountResponse `json:"user"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req service.LoginInput
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	user := newAccountResponse(result.Account)
	user.CreatedAt = nil
	c.JSON(http.StatusOK, loginResponse{
		Message:     "login successful",
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		User:        user,
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		h.fail(c, apperr.Forbidden("forbidden"))
		return
	}

	resp := gin.H{
		"userId":   claims.SubjectID(),
		"username": claims.Username,
		"role":     claims.Role,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	c.JSON(http.StatusOK, gin.H{"user": resp})
}
