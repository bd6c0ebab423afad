package ui

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"discscore/domain/samplesize"
	"discscore/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps a service error onto a status and a JSON body. An
// infeasible search is a diagnostic, so its advice travels with the error.
func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	body := gin.H{"error": err.Error(), "code": errors.GetCode(err)}

	if ie, ok := samplesize.AsInfeasible(err); ok {
		body["diagnostic"] = ie.Diagnostic
		body["message"] = ie.Diagnostic.Message()
		body["bound"] = ie.Bound
		body["achieved"] = ie.Achieved
		body["target"] = ie.Target
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, body)
}

// respondBindError reports a malformed request body or query string
func (s *Server) respondBindError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error(), "code": errors.CodeInvalidInput}

	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			if fe.Param() != "" {
				fields[fe.Field()] = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
			} else {
				fields[fe.Field()] = fe.Tag()
			}
		}
		body["error"] = "request validation failed"
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}
