package v1

import (
	ez_uuid "github.com/envelope-zero/forecast/internal/uuid"
	"gorm.io/gorm"
)

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

// Page is the pagination of a list request.
type Page struct {
	Offset uint `form:"offset" filterField:"false"` // The offset of the first resource returned. Defaults to 0.
	Limit  int  `form:"limit" filterField:"false"`  // Maximum number of resources to return. Defaults to 50.
}

func (p Page) page() Page {
	return p
}

// apply adds the conditions that are not plain equality to the query.
// Filters with such conditions override it.
func (p Page) apply(q *gorm.DB) *gorm.DB {
	return q
}

type Response[T any] struct {
	Data  *T      `json:"data"`                                                          // Data for the resource
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type ListResponse[T any] struct {
	Data       []T         `json:"data"`                                                          // List of resources
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type CreateResponse[T any] struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []Response[T] `json:"data"`                                                          // List of created resources
}

func (r *CreateResponse[T]) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, Response[T]{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}
