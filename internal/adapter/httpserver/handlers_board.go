package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/signupboard/internal/app"
	"github.com/pscheid92/signupboard/internal/domain"
	apperrors "github.com/pscheid92/signupboard/internal/platform/errors"
	"github.com/pscheid92/signupboard/internal/view"
)

const (
	formEmail    = "email"
	formActivity = "activity"
	formConfirm  = "confirm"
	confirmYes   = "yes"

	// htmx-style clients ask for the fragment instead of the full page.
	headerPartial = "HX-Request"
)

func (s *Server) registerBoardRoutes(csrf, rateLimit echo.MiddlewareFunc) {
	g := s.echo.Group("", s.visitorMiddleware(), csrf)

	g.GET("/", s.handleBoard)
	g.GET("/activities/fragment", s.handleFragment)
	g.GET("/notice", s.handleNotice)
	g.GET("/activities/:name/participants/remove", s.handleConfirmRemove)

	g.POST("/signup", s.handleSignup, rateLimit)
	g.POST("/activities/:name/participants/remove", s.handleRemove, rateLimit)
}

func (s *Server) handleBoard(c echo.Context) error {
	visitorID, err := visitorFrom(c)
	if err != nil {
		return err
	}

	res := s.dispatcher.Load(c.Request().Context())
	email, selected := s.takeForm(c)
	return s.renderBoard(c, visitorID, res, email, selected, false)
}

func (s *Server) handleFragment(c echo.Context) error {
	visitorID, err := visitorFrom(c)
	if err != nil {
		return err
	}

	// Partial clients keep their current list on failure, so they get a
	// status instead of the load-failure markup.
	res := s.dispatcher.Load(c.Request().Context())
	if res.LoadFailed {
		return loadError(res.Err)
	}
	return s.renderBoard(c, visitorID, res, "", "", true)
}

func (s *Server) handleSignup(c echo.Context) error {
	visitorID, err := visitorFrom(c)
	if err != nil {
		return err
	}

	email := c.FormValue(formEmail)
	activity := c.FormValue(formActivity)

	n := visitorNotifier{notices: s.notices, visitorID: visitorID}
	res := s.dispatcher.Signup(c.Request().Context(), n, email, activity)
	if res.ResetForm {
		email, activity = "", ""
	}
	if isPartial(c) {
		return s.renderBoard(c, visitorID, res, email, activity, true)
	}

	if email != "" || activity != "" {
		if err := s.stashForm(c, email, activity); err != nil {
			return err
		}
	}
	return redirectToBoard(c)
}

func (s *Server) handleConfirmRemove(c echo.Context) error {
	visitorID, err := visitorFrom(c)
	if err != nil {
		return err
	}

	activity, err := activityParam(c)
	if err != nil {
		return err
	}

	n := visitorNotifier{notices: s.notices, visitorID: visitorID}
	res := s.dispatcher.Remove(c.Request().Context(), n, activity, c.QueryParam(formEmail), false)
	if res.Confirm == nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return s.renderConfirm(c, res.Confirm)
}

func (s *Server) handleRemove(c echo.Context) error {
	visitorID, err := visitorFrom(c)
	if err != nil {
		return err
	}

	activity, err := activityParam(c)
	if err != nil {
		return err
	}

	email := c.FormValue(formEmail)
	confirmed := c.FormValue(formConfirm) == confirmYes

	n := visitorNotifier{notices: s.notices, visitorID: visitorID}
	res := s.dispatcher.Remove(c.Request().Context(), n, activity, email, confirmed)
	if res.Confirm != nil {
		return s.renderConfirm(c, res.Confirm)
	}
	if isPartial(c) {
		return s.renderBoard(c, visitorID, res, "", "", true)
	}
	return redirectToBoard(c)
}

// redirectToBoard ends a form post. The outcome is already in the
// visitor's notice area, so a reload of the board never re-submits.
func redirectToBoard(c echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/")
}

func loadError(err error) error {
	if errors.Is(err, domain.ErrUnavailable) {
		return apperrors.UnavailableError("activities API unavailable", err)
	}
	return apperrors.ExternalError("failed to load activities", err)
}

type noticeResponse struct {
	Text    string            `json:"text"`
	Kind    domain.NoticeKind `json:"kind"`
	Visible bool              `json:"visible"`
}

func (s *Server) handleNotice(c echo.Context) error {
	visitorID, err := visitorFrom(c)
	if err != nil {
		return err
	}

	n := s.notices.Visible(visitorID)
	resp := noticeResponse{Text: n.Text, Kind: n.Kind, Visible: !n.IsZero()}
	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write notice response: %w", err)
	}
	return nil
}

// renderBoard renders the page or fragment for a board result.
func (s *Server) renderBoard(c echo.Context, visitorID uuid.UUID, res app.Result, email, selected string, partial bool) error {
	ctx := c.Request().Context()
	if !res.Refreshed && !res.LoadFailed {
		// Display-only read: the rejected or failed action sent nothing
		// upstream, but the response still needs the current board.
		display := s.dispatcher.Load(ctx)
		res.Board, res.LoadFailed = display.Board, display.LoadFailed
	}

	data := view.PageData{
		Board:      res.Board,
		LoadFailed: res.LoadFailed,
		Notice:     s.notices.Visible(visitorID),
		Email:      email,
		Selected:   selected,
		CSRFToken:  csrfToken(c),
	}

	var buf bytes.Buffer
	render := s.renderer.Page
	if partial {
		render = s.renderer.Fragment
	}
	if err := render(&buf, data); err != nil {
		return apperrors.InternalError("failed to render board", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) renderConfirm(c echo.Context, confirm *app.Confirmation) error {
	data := view.ConfirmData{
		Activity:  confirm.Activity,
		Email:     confirm.Email,
		Prompt:    confirm.Prompt,
		CSRFToken: csrfToken(c),
	}

	var buf bytes.Buffer
	if err := s.renderer.Confirm(&buf, data); err != nil {
		return apperrors.InternalError("failed to render confirmation", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// activityParam returns the decoded activity name. Echo hands back the
// raw segment when the request path carried escapes such as %2F.
func activityParam(c echo.Context) (string, error) {
	name := c.Param("name")
	if c.Request().URL.RawPath == "" {
		return name, nil
	}
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return "", apperrors.ValidationError("invalid activity name").WithField("activity", name)
	}
	return decoded, nil
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get("csrf").(string)
	return token
}

func isPartial(c echo.Context) bool {
	return c.Request().Header.Get(headerPartial) == "true"
}
