package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"user-service/shared/models"

	"github.com/gin-gonic/gin"
)

var errEmptyBody = errors.New("request body is empty")

// readStringBody accepts a JSON string body, or an object carrying the value under field.
func readStringBody(c *gin.Context, field string) (string, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return "", errEmptyBody
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	value, ok := obj[field]
	if !ok {
		return "", errors.New("missing field " + field)
	}
	if err := json.Unmarshal(value, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (h *UserHandler) register(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	token, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()
	c.JSON(http.StatusOK, token)
}

func (h *UserHandler) login(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	token, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	loginsTotal.Inc()
	c.JSON(http.StatusOK, token)
}

func (h *UserHandler) logout(c *gin.Context) {
	token, err := readStringBody(c, "token")
	if err != nil {
		handleBindError(c, err)
		return
	}

	if err := h.userService.Logout(c.Request.Context(), token); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, "logout success")
}

// profile takes the username from the body, or from ?username= when the body is empty.
func (h *UserHandler) profile(c *gin.Context) {
	username, err := readStringBody(c, "username")
	if errors.Is(err, errEmptyBody) {
		username, err = c.Query("username"), nil
	}
	if err != nil {
		handleBindError(c, err)
		return
	}
	if username == "" {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	user, err := h.userService.Profile(c.Request.Context(), username)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) update(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		handleBindError(c, err)
		return
	}
	if user.Username == "" {
		handleServiceError(c, models.ErrInvalidInput)
		return
	}

	updated, err := h.userService.Update(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) deleteAccount(c *gin.Context) {
	var cert models.Certificate
	if err := c.ShouldBindJSON(&cert); err != nil {
		handleBindError(c, err)
		return
	}

	if err := h.userService.Delete(c.Request.Context(), cert); err != nil {
		handleServiceError(c, err)
		return
	}

	deletionsTotal.Inc()
	c.JSON(http.StatusOK, "delete success")
}

func (h *UserHandler) verify(c *gin.Context) {
	var cert models.Certificate
	if err := c.ShouldBindJSON(&cert); err != nil {
		handleBindError(c, err)
		return
	}

	if err := h.userService.VerifyCertificate(c.Request.Context(), cert); err != nil {
		certificateVerificationsTotal.WithLabelValues("failure").Inc()
		handleServiceError(c, err)
		return
	}

	certificateVerificationsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, "certificate success")
}
