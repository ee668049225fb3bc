package httpserver

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/signupboard/internal/domain"
	apperrors "github.com/pscheid92/signupboard/internal/platform/errors"
)

// visitorMiddleware makes sure every request carries a visitor id in its
// session cookie. The id only keys the visitor's notice area; it is not
// an identity.
func (s *Server) visitorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := s.sessionStore.Get(c.Request(), sessionName)
			if err != nil {
				// Tampered or rotated-key cookies decode with an error but
				// still yield a fresh session we can overwrite.
				slog.DebugContext(c.Request().Context(), "Discarding unreadable visitor session", "error", err)
			}

			raw, _ := session.Values[sessionKeyVisitorID].(string)
			visitorID, err := uuid.Parse(raw)
			if err != nil {
				visitorID = uuid.New()
				session.Values[sessionKeyVisitorID] = visitorID.String()
				if err := session.Save(c.Request(), c.Response()); err != nil {
					return apperrors.InternalError("failed to save visitor session", err)
				}
			}

			c.Set(contextKeyVisitorID, visitorID)
			return next(c)
		}
	}
}

func visitorFrom(c echo.Context) (uuid.UUID, error) {
	visitorID, ok := c.Get(contextKeyVisitorID).(uuid.UUID)
	if !ok {
		return uuid.Nil, apperrors.InternalError("visitor id missing from request context", nil)
	}
	return visitorID, nil
}

// visitorNotifier routes dispatcher messages to one visitor's notice area.
type visitorNotifier struct {
	notices   noticeBoard
	visitorID uuid.UUID
}

func (n visitorNotifier) Show(notice domain.Notice) {
	n.notices.Show(n.visitorID, notice)
}

// stashForm keeps the posted signup values for the page the visitor is
// redirected to.
func (s *Server) stashForm(c echo.Context, email, activity string) error {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	session.AddFlash(email, flashEmail)
	session.AddFlash(activity, flashActivity)
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return apperrors.InternalError("failed to save form values", err)
	}
	return nil
}

// takeForm returns and clears values left by stashForm.
func (s *Server) takeForm(c echo.Context) (email, activity string) {
	session, _ := s.sessionStore.Get(c.Request(), sessionName)
	emails := session.Flashes(flashEmail)
	activities := session.Flashes(flashActivity)
	if len(emails) == 0 && len(activities) == 0 {
		return "", ""
	}
	if err := session.Save(c.Request(), c.Response()); err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to clear form values", "error", err)
	}
	return lastString(emails), lastString(activities)
}

func lastString(values []any) string {
	if len(values) == 0 {
		return ""
	}
	s, _ := values[len(values)-1].(string)
	return s
}
