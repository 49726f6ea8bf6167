package utils

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// ResponseData is the JSON envelope every API response is wrapped in. Status
// repeats the HTTP code; Error is only set on failures.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// errorMessage is the fixed Message on failed responses; the detail goes in Error.
const errorMessage = "An error occurred"

func write(c *gin.Context, code int, body ResponseData) {
	body.Status = code
	c.JSON(code, body)
}

// Success answers 200 with data.
func Success(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, ResponseData{Message: message, Data: data})
}

// Created answers 201 with the stored record.
func Created(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, ResponseData{Message: message, Data: data})
}

// Error answers statusCode with detail in the error field.
func Error(c *gin.Context, statusCode int, detail string) {
	write(c, statusCode, ResponseData{Message: errorMessage, Error: detail})
}

// BadRequest is Error with 400.
func BadRequest(c *gin.Context, detail string) { Error(c, http.StatusBadRequest, detail) }

// Unauthorized is Error with 401.
func Unauthorized(c *gin.Context, detail string) { Error(c, http.StatusUnauthorized, detail) }

// Forbidden is Error with 403.
func Forbidden(c *gin.Context, detail string) { Error(c, http.StatusForbidden, detail) }

// NotFound is Error with 404.
func NotFound(c *gin.Context, detail string) { Error(c, http.StatusNotFound, detail) }

// InternalServerError is Error with 500. Store errors pass their own text through.
func InternalServerError(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, detail)
}

// RedirectWithNotice redirects to path carrying a transient error notice.
// An empty notice redirects silently.
func RedirectWithNotice(c *gin.Context, path, notice string) {
	target := path
	if notice != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		target = path + sep + "error=" + url.QueryEscape(notice)
	}
	c.Redirect(http.StatusSeeOther, target)
}
