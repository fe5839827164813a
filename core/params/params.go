package params

import (
	"net/url"
	"strconv"
	"strings"

	"court-reservation-api/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

func NewQueryParams(c echo.Context) *QueryParams {
	return FromValues(c.QueryParams())
}

// FromValues builds pagination params from raw query values, clamping bad input
// to the defaults.
func FromValues(values url.Values) *QueryParams {
	pageNumber, err := strconv.Atoi(values.Get("page_number"))
	if err != nil || pageNumber < 1 {
		pageNumber = 1
	}

	pageSize, err := strconv.Atoi(values.Get("page_size"))
	if err != nil || pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return &QueryParams{
		PageNumber: pageNumber,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(values.Get("search")),
	}
}
