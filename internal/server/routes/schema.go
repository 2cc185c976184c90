package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/common"
	jsonloader "github.com/OFFIS-RIT/kiwi/explorer/pkg/loader/json"

	"github.com/labstack/echo/v4"
)

var documentSchema = jsonloader.GenerateSchema(common.Document{})

// GetDocumentSchemaHandler returns the JSON schema of an input document.
func GetDocumentSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, documentSchema)
}
