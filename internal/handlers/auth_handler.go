package handlers

import (
	"net/http"
	"strings"
	"time"

	"iam/internal/api/middleware"
	"iam/internal/api/validator"
	"iam/internal/auth"
	"iam/internal/errs"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type SignUpResponse struct {
	Data auth.SignUpResult `json:"data"`
}

type SessionData struct {
	User           auth.UserProfile   `json:"user"`
	Role           *auth.RoleProfile  `json:"role,omitempty"`
	AvailableRoles []auth.RoleProfile `json:"availableRoles,omitempty"`
}

// SignInResponse carries tokens for single-role users and an exchange token
// otherwise.
type SignInResponse struct {
	Data                   SessionData `json:"data"`
	RequireRoleSelection   bool        `json:"requireRoleSelection"`
	AccessToken            string      `json:"accessToken,omitempty"`
	RefreshToken           string      `json:"refreshToken,omitempty"`
	ExchangeToken          string      `json:"exchangeToken,omitempty"`
	ExchangeTokenExpiresAt *time.Time  `json:"exchangeTokenExpiresAt,omitempty"`
}

// SignUp registers a user with one or more roles.
// @Summary Sign up
// @Description Create a user bound to every requested role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validator.SignUpRequest true "Sign-up details"
// @Success 201 {object} SignUpResponse
// @Failure 400 {object} map[string]interface{} "Validation error, unknown role or email exists"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req validator.SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.svc.SignUp(c.Request().Context(), auth.SignUpInput{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		RoleCodes: req.RoleCodes,
		Image:     req.Image,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, SignUpResponse{Data: *res})
}

// SignIn verifies credentials.
// @Summary Sign in
// @Description Returns a token pair for single-role users, or an exchange token and the available roles
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validator.SignInRequest true "Credentials"
// @Success 200 {object} SignInResponse
// @Failure 401 {object} map[string]interface{} "Invalid email or password"
// @Failure 429 {object} map[string]interface{} "Too many attempts"
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req validator.SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.svc.SignIn(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return err
	}

	out := SignInResponse{
		Data:                 SessionData{User: res.User},
		RequireRoleSelection: res.RequireRoleSelection,
	}
	if res.RequireRoleSelection {
		expires := res.ExchangeExpiresAt
		out.Data.AvailableRoles = res.AvailableRoles
		out.ExchangeToken = res.ExchangeToken
		out.ExchangeTokenExpiresAt = &expires
	} else {
		out.Data.Role = res.Role
		out.AccessToken = res.Tokens.AccessToken
		out.RefreshToken = res.Tokens.RefreshToken
	}
	return c.JSON(http.StatusOK, out)
}

// SelectRole redeems an exchange token for a token pair bound to one role.
// @Summary Select role
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validator.SelectRoleRequest true "Exchange token and role"
// @Success 200 {object} SignInResponse
// @Failure 400 {object} map[string]interface{} "Invalid exchange token or role"
// @Router /auth/select-role [post]
func (h *AuthHandler) SelectRole(c echo.Context) error {
	var req validator.SelectRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.svc.SelectRole(c.Request().Context(), req.ExchangeToken, req.RoleID)
	if err != nil {
		return err
	}
	role := res.Role
	return c.JSON(http.StatusOK, SignInResponse{
		Data:         SessionData{User: res.User, Role: &role},
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	})
}

// RefreshTokens rotates a refresh token.
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validator.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} map[string]interface{} "Invalid refresh token"
// @Router /auth/refresh-tokens [post]
func (h *AuthHandler) RefreshTokens(c echo.Context) error {
	var req validator.RefreshTokenRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.svc.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// SignOut ends the caller's refresh session.
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} map[string]interface{} "Invalid or missing access token"
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	user := middleware.GetActiveUser(c)
	if user == nil {
		return errs.Unauthorized(middleware.MsgInvalidAccessToken)
	}
	if err := h.svc.SignOut(c.Request().Context(), user.User.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
