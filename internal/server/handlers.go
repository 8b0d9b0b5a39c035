package server

import (
	"context"
	"net/http"

	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/gin-gonic/gin"
)

// PredictResponse is the body of a successful POST /v1/predict.
type PredictResponse struct {
	*prediction.Result
	Warnings []string `json:"warnings"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) health(c *gin.Context) {
	info := s.svc.Describe()
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"model_type":    info.ModelType,
		"model_version": info.Version,
	})
}

func (s *Server) model(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Describe())
}

func (s *Server) predict(c *gin.Context) {
	var rec record.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be a flat JSON object of strings and numbers: " + err.Error(),
			Code:  log.ErrorInvalidInput,
		})
		return
	}
	if rec.Len() == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "record has no fields", Code: log.ErrorInvalidInput})
		return
	}

	res, err := s.svc.Predict(c.Request.Context(), rec)
	if err != nil {
		status, body, errType := errorResponse(err)
		s.logger.Warn("Prediction request failed", err,
			log.ErrorCodeKey, body.Code,
			log.ErrorTypeKey, errType,
		)
		c.JSON(status, body)
		return
	}

	warnings := make([]string, len(res.Substitutions))
	for i, w := range res.Substitutions.Warnings() {
		warnings[i] = w.Error()
	}
	c.JSON(http.StatusOK, PredictResponse{Result: res, Warnings: warnings})
}

// errorResponse maps a prediction error to a status, a body and the error
// type for logs. Only validation errors are echoed to the client, since
// they describe the submitted record; other causes stay in the log.
func errorResponse(err error) (int, ErrorResponse, string) {
	var invErr *errors.ClassifierInvocationError
	var valErr *errors.ValidationError
	switch {
	case errors.As(err, &invErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: "prediction failed for this record",
			Code:  log.ErrorClassifierInvocation,
		}, "ClassifierInvocationError"
	case errors.As(err, &valErr):
		return http.StatusBadRequest, ErrorResponse{Error: valErr.Error(), Code: log.ErrorInvalidInput}, "ValidationError"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "request canceled", Code: "CANCELED"}, "Canceled"
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL"}, "Internal"
	}
}
