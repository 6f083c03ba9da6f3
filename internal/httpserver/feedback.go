package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/service/feedback"
	"github.com/Skotchmaster/canteen/internal/transport"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

type FeedbackHTTP struct {
	Feedback *feedback.FeedbackService
}

func (h *FeedbackHTTP) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "feedback.submit")

	var req transport.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("feedback_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	f, err := h.Feedback.Submit(ctx, req.Name, req.Email, req.Message)
	if err != nil {
		if errors.Is(err, feedback.ErrValidation) {
			l.Warn("feedback_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("feedback_failed", "status", 500, "reason", "cannot save feedback", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save feedback")
	}
	return c.JSON(http.StatusCreated, f)
}
