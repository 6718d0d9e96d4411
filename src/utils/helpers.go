package utils

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Pagination is the paging block attached to list responses.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	NextPage     *int  `json:"nextPage"`
	PreviousPage *int  `json:"previousPage"`
	TotalCount   int64 `json:"totalCount"`
	TotalPages   int   `json:"totalPages"`
}

func Paginate(total int64, page, perPage int) Pagination {
	// Avoid division by zero
	if perPage <= 0 {
		perPage = 1
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))

	var nextPage, prevPage *int
	if page < totalPages {
		next := page + 1
		nextPage = &next
	}
	if page > 1 {
		prev := page - 1
		prevPage = &prev
	}

	return Pagination{
		CurrentPage:  page,
		ItemsPerPage: perPage,
		NextPage:     nextPage,
		PreviousPage: prevPage,
		TotalCount:   total,
		TotalPages:   totalPages,
	}
}

// ServiceError to define return exception for system
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func NotFound(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Message: msg}
}

func BadRequest(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Message: msg}
}

func Forbidden(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Message: msg}
}

func Conflict(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusConflict, Message: msg}
}

func Unauthorized(msg string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusUnauthorized, Message: msg}
}

// CalculateOffsetStruct is the struct to define return result for calculate service
type CalculateOffsetStruct struct {
	CurrentPage  int
	ItemsPerPage int
	OrderBy      string
	SortBy       string
	Offset       int
}

// CalculateOffset normalizes paging input. sortBy is the direction and
// orderBy the column, as the list queries expect them.
func CalculateOffset(currentPage, itemsPerPage int, sortBy, orderBy string) CalculateOffsetStruct {
	if orderBy == "" {
		orderBy = "created_at"
	}
	if sortBy != "asc" && sortBy != "desc" {
		sortBy = "desc"
	}
	if currentPage <= 0 {
		currentPage = 1
	}

	offset := (currentPage - 1) * itemsPerPage
	if offset < 0 {
		offset = 0
	}

	return CalculateOffsetStruct{
		CurrentPage:  currentPage,
		ItemsPerPage: itemsPerPage,
		OrderBy:      orderBy,
		SortBy:       sortBy,
		Offset:       offset,
	}
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (uint, *ServiceError) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, BadRequest("invalid " + name)
	}
	return uint(id), nil
}

// QueryInt reads an integer query parameter, falling back to def.
func QueryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// RespondError writes err as {"error": msg}. Unknown errors become 500.
func RespondError(c *gin.Context, err error) {
	var se *ServiceError
	if errors.As(err, &se) {
		c.AbortWithStatusJSON(se.StatusCode, gin.H{"error": se.Message})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// BindJson binds the request body and reports validation failures as 400.
func BindJson(c *gin.Context, request interface{}) *ServiceError {
	if err := c.ShouldBindJSON(request); err != nil {
		return BadRequest("invalid input: " + err.Error())
	}
	return nil
}
