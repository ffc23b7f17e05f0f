package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/models"
)

// requestTimeout bounds every handler's work
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads a positive integer path parameter
func parseID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, domain.NewBadRequestError("Invalid " + name)
	}
	return id, nil
}

// bind decodes the request body into req and validates it
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewBadRequestError("Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// pageQuery reads the list page filters from the query string
func pageQuery(c echo.Context) loaders.Query {
	return loaders.Query{
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Overdue:  c.QueryParam("overdue"),
	}
}

func deleted(c echo.Context, what string) error {
	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: what + " deleted"})
}
