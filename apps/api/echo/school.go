package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type schoolApi struct {
	svc        school.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerSchoolAPI(
	g *echo.Group,
	svc school.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := schoolApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	g.GET("/students", api.queryStudents)
	g.GET("/classes", api.queryClasses)
	g.GET("/sections", api.querySections)
	g.GET("/allotments", api.queryAllotments)
	g.POST("/create-allotment", api.createAllotment)
	g.PUT("/allotments/:id", api.updateAllotment)
	g.DELETE("/allotments/:id", api.deleteAllotment)
}

// Handlers

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	students, err := api.svc.Students(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []school.Student{}
	}
	return respond(ctx, http.StatusOK, students)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.Classes(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []school.Class{}
	}
	return respond(ctx, http.StatusOK, classes)
}

func (api *schoolApi) querySections(ctx echo.Context) error {
	sections, err := api.svc.Sections(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying sections")
	}
	if sections == nil {
		sections = []school.Section{}
	}
	return respond(ctx, http.StatusOK, sections)
}

func (api *schoolApi) queryAllotments(ctx echo.Context) error {
	allotments, err := api.svc.Allotments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying allotments")
	}
	if allotments == nil {
		allotments = []school.AllotmentView{}
	}
	return respond(ctx, http.StatusOK, allotments)
}

func (api *schoolApi) createAllotment(ctx echo.Context) error {
	var data school.NewAllotment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAllotment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	alt, err := api.svc.CreateAllotment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating allotment")
	}
	return respond(ctx, http.StatusCreated, alt, "Allotment created successfully")
}

func (api *schoolApi) updateAllotment(ctx echo.Context) error {
	id, err := allotmentID(ctx)
	if err != nil {
		return err
	}

	var data school.UpdateAllotment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAllotment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	alt, err := api.svc.UpdateAllotment(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating allotment")
	}
	return respond(ctx, http.StatusOK, alt, "Allotment updated successfully")
}

func (api *schoolApi) deleteAllotment(ctx echo.Context) error {
	id, err := allotmentID(ctx)
	if err != nil {
		return err
	}

	alt, err := api.svc.DeleteAllotment(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting allotment")
	}
	return respond(ctx, http.StatusOK, alt, "Allotment deleted successfully")
}

// allotmentID parses the :id path param; a malformed id behaves like a missing row.
func allotmentID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, school.ErrNotFound
	}
	return id, nil
}
