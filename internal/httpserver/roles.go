package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/service"
	"github.com/Skotchmaster/auth_service/internal/transport"
)

type RolesHTTP struct {
	Svc *service.RoleService
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apiError(http.StatusUnprocessableEntity, "validation_error", name+" is not a valid uuid")
	}
	return id, nil
}

func (h *RolesHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "roles_list")

	roles, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_roles_failed", err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RolesHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "roles_create")

	var req transport.RoleRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	role, err := h.Svc.Create(ctx, req.Name)
	if err != nil {
		return fail(l, "create_role_failed", err)
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RolesHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "roles_get")

	id, err := pathUUID(c, "role_id")
	if err != nil {
		return err
	}
	role, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_role_failed", err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RolesHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "roles_update")

	id, err := pathUUID(c, "role_id")
	if err != nil {
		return err
	}
	var req transport.RoleRequest
	if err := c.Bind(&req); err != nil {
		return badBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	role, err := h.Svc.Update(ctx, id, req.Name)
	if err != nil {
		return fail(l, "update_role_failed", err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RolesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "roles_delete")

	id, err := pathUUID(c, "role_id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_role_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RolesHTTP) ListForUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_roles_list")

	userID, err := pathUUID(c, "user_id")
	if err != nil {
		return err
	}
	roles, err := h.Svc.RolesForUser(ctx, userID)
	if err != nil {
		return fail(l, "list_user_roles_failed", err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RolesHTTP) bindRoleRef(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := pathUUID(c, "user_id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	var req transport.RoleRef
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, uuid.Nil, badBody(err)
	}
	if err := c.Validate(&req); err != nil {
		return uuid.Nil, uuid.Nil, validationError(err)
	}
	return userID, req.ID, nil
}

func (h *RolesHTTP) Assign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_roles_assign")

	userID, roleID, err := h.bindRoleRef(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Assign(ctx, userID, roleID); err != nil {
		return fail(l, "assign_role_failed", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "role assigned"})
}

func (h *RolesHTTP) Unassign(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_roles_unassign")

	userID, roleID, err := h.bindRoleRef(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Unassign(ctx, userID, roleID); err != nil {
		return fail(l, "unassign_role_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
