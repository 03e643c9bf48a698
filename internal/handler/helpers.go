package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/saadullahkhan123123/saeedautobackend/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Error: "validation failed", Details: "invalid JSON: " + err.Error()})
		return false
	}
	return checkStruct(c, req)
}

// bindQueryAndValidate is the query-string sibling of bindAndValidate.
// gin's query binding enforces only `binding:` tags, so the validator has to
// run explicitly or the filter DTOs' `validate:` tags are dead letters.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Error: "validation failed", Details: "invalid query: " + err.Error()})
		return false
	}
	return checkStruct(c, req)
}

func checkStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Error: "validation failed", Details: validationDetails(err)})
		return false
	}
	return true
}

// validationDetails flattens field errors into the uniform details string,
// e.g. "Bucket: oneof=day week month; Limit: max=200".
func validationDetails(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err.Error()
	}
	parts := make([]string, 0, len(ves))
	for _, fe := range ves {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// respondError maps a service error to its HTTP status and uniform body.
// Unclassified errors render as opaque 500s and get logged here.
func respondError(c *gin.Context, err error) {
	status, body := apierror.ResponseFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled service error")
	}
	c.JSON(status, body)
}
