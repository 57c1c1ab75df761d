package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/folio-hub/portfolio-api/internal/api/metrics"
	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
)

// UserHandler serves account reads, profile updates, password changes,
// profile images and the account delete.
type UserHandler struct {
	users          ports.UserService
	auth           ports.AuthService
	images         ports.ProfileImageService
	maxUploadBytes int64
}

func NewUserHandler(users ports.UserService, auth ports.AuthService, images ports.ProfileImageService, maxUploadBytes int64) *UserHandler {
	return &UserHandler{
		users:          users,
		auth:           auth,
		images:         images,
		maxUploadBytes: maxUploadBytes,
	}
}

// Current returns the authenticated user.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /user/current [get]
func (h *UserHandler) Current(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUserInfo(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Get returns a user's public profile.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.GetUserInfo(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// List returns every user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.User
// @Router       /userlist [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Search returns users whose name contains the path segment, ignoring case.
//
// @Summary      Search users by name
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name  path     string  true  "Part of the user name"
// @Success      200   {array}  domain.User
// @Router       /userlist/search/{name} [get]
func (h *UserHandler) Search(c echo.Context) error {
	users, err := h.users.SearchUsers(c.Request().Context(), pathParam(c, "name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Update applies a partial profile update. Keys that are absent or null are
// left unchanged.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User id"
// @Param        body  body      domain.UserPatch  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var patch domain.UserPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the password when pw matches the current one. A
// mismatch is reported as {"changed": false}.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  domain.PasswordChange
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /users/password/{id} [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.auth.ChangePassword(c.Request().Context(), c.Param("id"), req.Current, req.New)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// UploadProfileImage accepts a multipart "img" file, resizes it and stores it
// as the user's profile image.
//
// @Summary      Upload profile image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Param        img  formData  file    true  "Image file"
// @Success      200  {object}  profileImageResponse
// @Failure      400  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      413  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/profileImg/{id} [put]
func (h *UserHandler) UploadProfileImage(c echo.Context) error {
	req := c.Request()
	if h.maxUploadBytes > 0 {
		// Leave room for the multipart envelope around the file itself.
		req.Body = http.MaxBytesReader(c.Response(), req.Body, h.maxUploadBytes+1<<20)
	}

	fh, err := c.FormFile("img")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.ProfileImagesTotal.WithLabelValues("rejected").Inc()
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "img file is required")
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		metrics.ProfileImagesTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	img, err := h.images.Ingest(req.Context(), c.Param("id"), domain.ImageUpload{Filename: fh.Filename, Data: data})
	if err != nil {
		metrics.ProfileImagesTotal.WithLabelValues(uploadOutcome(err)).Inc()
		return err
	}

	metrics.ProfileImagesTotal.WithLabelValues("stored").Inc()
	return c.JSON(http.StatusOK, profileImageResponse{URL: img.URL})
}

func uploadOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrUploadInProgress):
		return "busy"
	case errors.Is(err, domain.ErrImageDecode), errors.Is(err, domain.ErrNotFound):
		return "rejected"
	default:
		return "error"
	}
}

// GetProfileImageURL returns the stored profile image URL as plain text.
//
// @Summary      Get profile image URL
// @Tags         users
// @Produce      plain
// @Param        id   path      string  true  "User id"
// @Success      200  {string}  string
// @Failure      404  {object}  errorResponse
// @Router       /users/profileImg/{id} [get]
func (h *UserHandler) GetProfileImageURL(c echo.Context) error {
	url, err := h.users.GetProfileImageURL(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, url)
}

// Delete removes the account and every project, education and certificate it
// owns. The delete is best effort: a failed step is reported as 500 after the
// remaining steps ran.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      200
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.DeleteUserCascade(c.Request().Context(), c.Param("id")); err != nil {
		var pf *domain.PartialFailureError
		if errors.As(err, &pf) {
			for kind := range pf.Failed {
				metrics.CascadeDeleteFailuresTotal.WithLabelValues(kind).Inc()
			}
		}
		return err
	}
	return c.NoContent(http.StatusOK)
}
