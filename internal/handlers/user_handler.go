package handlers

import (
	"io"
	"net/http"

	"iam/internal/api/middleware"
	"iam/internal/api/validator"
	"iam/internal/errs"
	"iam/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	svc UserService
	log *logger.Logger
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc, log: logger.New("user_handler")}
}

type UserListResponse struct {
	Users interface{} `json:"users"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// List returns users newest first with their roles.
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} UserListResponse
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var q validator.ListQuery
	if err := bind(c, &q); err != nil {
		return err
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}

	users, total, err := h.svc.List(c.Request().Context(), q.Page, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserListResponse{Users: users, Total: total, Page: q.Page, Limit: q.Limit})
}

// Me returns the caller's profile and roles.
// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{} "{data: {}}"
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user := middleware.GetActiveUser(c)
	if user == nil {
		return errs.Unauthorized(middleware.MsgInvalidAccessToken)
	}
	me, err := h.svc.Me(c.Request().Context(), user.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": me})
}

// UploadAvatar stores an image for the caller.
// @Summary Upload avatar
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} map[string]interface{} "{data: {}}"
// @Failure 400 {object} map[string]interface{} "Missing or invalid file"
// @Router /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user := middleware.GetActiveUser(c)
	if user == nil {
		return errs.Unauthorized(middleware.MsgInvalidAccessToken)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errs.InvalidInput("file is required")
	}
	if file.Size > maxAvatarBytes {
		return errs.InvalidInput("file must not exceed 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return errs.Internal(h.log.Error("Failed to open uploaded file", err))
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return errs.Internal(h.log.Error("Failed to read uploaded file", err))
	}

	profile, err := h.svc.UploadAvatar(c.Request().Context(), user.User.ID, file.Filename, file.Header.Get(echo.HeaderContentType), content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": profile})
}
