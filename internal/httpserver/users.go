package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	authmw "github.com/Skotchmaster/auth_service/internal/middleware/auth"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
	"github.com/Skotchmaster/auth_service/internal/util"
)

type UsersHTTP struct {
	Users    *service.UserService
	Sessions *service.SessionLedger
}

func toSessionResponse(s models.Session) transport.SessionResponse {
	return transport.SessionResponse{
		ID:        s.ID,
		UserAgent: s.UserAgent,
		Action:    s.Action,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apiError(http.StatusUnprocessableEntity, "validation_error", name+" must be an integer")
	}
	return v, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apiError(http.StatusUnprocessableEntity, "validation_error", name+" must be a boolean")
	}
	return v, nil
}

func (h *UsersHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_me")

	claims := authmw.ClaimsFrom(c)
	p, err := h.Users.Profile(ctx, claims.UserID)
	if err != nil {
		return fail(l, "profile_failed", err)
	}
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	return c.JSON(http.StatusOK, toUserResponse(p.User, roles))
}

func (h *UsersHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_patch")

	var req transport.PatchUserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	claims := authmw.ClaimsFrom(c)
	user, err := h.Users.Patch(ctx, claims.UserID, service.UserPatch{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		return fail(l, "patch_user_failed", err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user, nil))
}

func (h *UsersHTTP) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sessions_list")

	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	size, err := queryInt(c, "page_size", util.DefaultPageSize)
	if err != nil {
		return err
	}
	page, err := queryInt(c, "page_number", 1)
	if err != nil {
		return err
	}

	claims := authmw.ClaimsFrom(c)
	sessions, err := h.Sessions.ListForUser(ctx, claims.UserID, active, size, page)
	if err != nil {
		return fail(l, "list_sessions_failed", err)
	}

	out := make([]transport.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UsersHTTP) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sessions_get")

	id, err := pathUUID(c, "session_id")
	if err != nil {
		return err
	}
	s, err := h.Sessions.Get(ctx, authmw.ClaimsFrom(c).UserID, id)
	if err != nil {
		return fail(l, "get_session_failed", err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(*s))
}

func (h *UsersHTTP) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "sessions_delete")

	id, err := pathUUID(c, "session_id")
	if err != nil {
		return err
	}
	if err := h.Sessions.Delete(ctx, authmw.ClaimsFrom(c).UserID, id); err != nil {
		return fail(l, "delete_session_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
