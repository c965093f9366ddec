package evaluation

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// EvaluateResponse is the JSON response for POST /api/sessions/:id/evaluation.
type EvaluateResponse struct {
	Stored  bool   `json:"stored"`
	Warning string `json:"warning,omitempty"`
	Report  Report `json:"report"`
}

// EvaluateHandler runs the grading pipeline for a session.
func EvaluateHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := sessionParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		out, err := svc.EvaluateSession(c.Request.Context(), sessionID)
		switch {
		case errors.Is(err, ErrEmptyTranscript):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "insufficient content"})
			return
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "evaluation failed"})
			return
		}
		resp := EvaluateResponse{Stored: out.Stored, Report: out.Report}
		if !out.Stored {
			resp.Warning = "evaluation computed but could not be saved"
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ReportHandler returns the stored evaluation for a session.
func ReportHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := sessionParam(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		report, err := svc.Report(c.Request.Context(), sessionID)
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no evaluation for session"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load evaluation"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func sessionParam(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid session id %q", raw)
	}
	return uint(id), nil
}
