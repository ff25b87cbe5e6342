package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foodorder/internal/config"
	"foodorder/internal/metrics"
	"foodorder/internal/services"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// Pinger is satisfied by the database store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func ensureDBConnection(ctx context.Context, db Pinger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Ping(checkCtx)
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := config.AppEnv.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

var kindStatus = map[services.ErrorKind]int{
	services.KindValidation:        http.StatusBadRequest,
	services.KindNotFound:          http.StatusNotFound,
	services.KindUnavailable:       http.StatusNotFound,
	services.KindInsufficientStock: http.StatusBadRequest,
	services.KindForbidden:         http.StatusForbidden,
	services.KindUnauthenticated:   http.StatusUnauthorized,
	services.KindConflict:          http.StatusBadRequest,
	services.KindInternal:          http.StatusInternalServerError,
}

// respondServiceError writes a service error as {message} with the status of
// its kind. Internal causes are only shown outside production.
func respondServiceError(c *gin.Context, route string, err error) {
	var serr *services.Error
	if !errors.As(err, &serr) {
		serr = &services.Error{Kind: services.KindInternal, Message: "Server error", Err: err}
	}
	status, ok := kindStatus[serr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := gin.H{"message": serr.Message}
	switch serr.Kind {
	case services.KindValidation:
		if len(serr.Fields) > 0 {
			body["fields"] = serr.Fields
		}
	case services.KindInsufficientStock:
		body["available"] = serr.Available
		body["requested"] = serr.Requested
	case services.KindInternal:
		log.Printf("[%s] [ERROR] %v", route, err)
		if serr.Err != nil && !config.AppEnv.IsProduction() {
			body["error"] = serr.Err.Error()
		}
	}

	log.Printf("[%s] returning error %d: %s", route, status, serr.Message)
	c.AbortWithStatusJSON(status, body)
}

// recordOperation counts op by outcome and returns err unchanged.
func recordOperation(op string, err error) error {
	outcome := "success"
	if err != nil {
		outcome = string(services.KindOf(err))
	}
	metrics.RecordOperation(op, outcome)
	return err
}

func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			fields = append(fields, field)
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		log.Printf("[%s] returning error %d: validation failed", route, http.StatusBadRequest)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": strings.Join(details, ", "),
			"fields":  fields,
		})
		return
	}

	respondWithError(c, http.StatusBadRequest, route, "Invalid request body")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// objectIDParam parses a path parameter and writes a 400 when it is malformed.
func objectIDParam(c *gin.Context, route, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param(name)))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf("Invalid %s", name))
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseObjectID parses a body or query id, treating empty as absent.
func parseObjectID(value string) (primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return primitive.NilObjectID, nil
	}
	return primitive.ObjectIDFromHex(value)
}
