package v1

import (
	"errors"
	"net/http"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/projection"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate status for an error
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrResourceNotFound), errors.Is(err, projection.ErrUntracked):
		return http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyPosted), errors.Is(err, models.ErrPostedTransaction), errors.Is(err, models.ErrCardStillReferenced):
		return http.StatusConflict
	}

	return http.StatusBadRequest
}

var (
	errBudgetNotSet   = errors.New("the budget query parameter must be set to a positive amount")
	errNoPrimary      = errors.New("no account is configured or found as primary account, set the account query parameter")
	errHorizonInvalid = errors.New("the horizon must be between 1 and 120 months")
)

// errorStrings converts errors for responses.
func errorStrings(errs []error) []string {
	s := make([]string, 0, len(errs))
	for _, err := range errs {
		s = append(s, err.Error())
	}
	return s
}

func errorPtr(err error) *string {
	s := err.Error()
	return &s
}
