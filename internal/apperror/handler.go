package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler returns an echo HTTPErrorHandler that renders the taxonomy.
// Unexpected errors are logged with their cause and normalized to a 500 with
// no internal detail in the body.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *Error
		if !errors.As(err, &appErr) {
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				// Routing-level errors (404/405) produced by echo itself.
				_ = c.JSON(httpErr.Code, map[string]any{
					"error": map[string]any{
						"code":    http.StatusText(httpErr.Code),
						"message": httpErr.Message,
					},
				})
				return
			}
			appErr = Internal(err)
		}

		if appErr.Kind == KindInternal {
			log.Error("unhandled request error",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		body := map[string]any{
			"error": map[string]any{
				"code":    appErr.Kind,
				"message": appErr.Message,
			},
		}
		if len(appErr.Fields) > 0 {
			body["error"].(map[string]any)["fields"] = appErr.Fields
		}
		_ = c.JSON(appErr.Status(), body)
	}
}
