package handlers

import (
	"net/http"

	"ticket-resale/security"
	"ticket-resale/store"

	"github.com/labstack/echo/v5"
)

type ProfileHandler struct {
	users *store.UserStore
}

func NewProfileHandler(users *store.UserStore) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) Profile(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), security.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"name":  user.Name,
		"email": user.Email,
		"upiId": user.UpiID,
	})
}

func (h *ProfileHandler) EditProfile(c echo.Context) error {
	var req struct {
		Name  string `json:"name"`
		UpiID string `json:"upiId"`
	}
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}
	if req.Name == "" && req.UpiID == "" {
		return respond(c, http.StatusBadRequest, "Nothing to update")
	}

	if err := h.users.UpdateProfile(c.Request().Context(), security.UserID(c), req.Name, req.UpiID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Profile updated successfully"})
}
