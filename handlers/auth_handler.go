package handlers

import (
	"net/http"

	"ticket-resale/services"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v5"
)

type AuthHandler struct {
	auth     *services.AuthService
	validate *validator.Validate
}

func NewAuthHandler(auth *services.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{auth: auth, validate: validate}
}

// RequestOTP issues a challenge code for signup or login.
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req struct {
		PhoneNumber string `json:"phone_number" validate:"required"`
		Source      string `json:"source" validate:"required,oneof=signup login"`
	}
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Phone number and source are required")
	}

	if err := h.auth.RequestChallenge(c.Request().Context(), req.PhoneNumber, req.Source); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "OTP sent"})
}

// Signup creates a user after OTP verification and returns a session
// token.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Email       string `json:"email" validate:"required,email"`
		PhoneNumber string `json:"phone_number" validate:"required"`
		UpiID       string `json:"upiId"`
		OTP         string `json:"otp" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Missing required fields")
	}

	token, err := h.auth.Signup(c.Request().Context(), services.SignupInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.PhoneNumber,
		UpiID: req.UpiID,
		Code:  req.OTP,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Signup successful",
		"token":   token,
	})
}

// Login validates the OTP and returns a session token carrying the
// user's persisted role.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		PhoneNumber string `json:"phone_number" validate:"required"`
		OTP         string `json:"otp" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Missing required fields")
	}

	token, err := h.auth.Login(c.Request().Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}
