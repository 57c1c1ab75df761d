package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/folio-hub/portfolio-api/internal/core/domain"
	"github.com/folio-hub/portfolio-api/internal/core/ports"
)

// RecordHandler serves one kind of profile record. The JSON body of create is
// decoded into T; the body of update into the patch returned by newPatch.
type RecordHandler[T any] struct {
	service  ports.RecordService[T]
	newPatch func() domain.Patch
}

func NewRecordHandler[T any](service ports.RecordService[T], newPatch func() domain.Patch) *RecordHandler[T] {
	return &RecordHandler[T]{service: service, newPatch: newPatch}
}

func NewProjectHandler(service ports.RecordService[domain.Project]) *RecordHandler[domain.Project] {
	return NewRecordHandler(service, func() domain.Patch { return &domain.ProjectPatch{} })
}

func NewEducationHandler(service ports.RecordService[domain.Education]) *RecordHandler[domain.Education] {
	return NewRecordHandler(service, func() domain.Patch { return &domain.EducationPatch{} })
}

func NewCertificateHandler(service ports.RecordService[domain.Certificate]) *RecordHandler[domain.Certificate] {
	return NewRecordHandler(service, func() domain.Patch { return &domain.CertificatePatch{} })
}

// Create stores a new record owned by the authenticated user. Any id or
// user_id in the body is ignored.
func (h *RecordHandler[T]) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	draft := new(T)
	if err := c.Bind(draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	rec, err := h.service.Create(c.Request().Context(), userID, draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *RecordHandler[T]) Get(c echo.Context) error {
	rec, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// ListByUser returns the records owned by :user_id, an empty array when there
// are none.
func (h *RecordHandler[T]) ListByUser(c echo.Context) error {
	recs, err := h.service.ListByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *RecordHandler[T]) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	patch := h.newPatch()
	if err := c.Bind(patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	rec, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *RecordHandler[T]) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Result: "ok"})
}
