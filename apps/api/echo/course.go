package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
)

type courseApi struct {
	svc         *course.Service
	assessments *assessment.Service
	validate    *validator.Validate
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *course.Service,
	assessments *assessment.Service,
	validate *validator.Validate,
) {
	api := courseApi{svc: svc, assessments: assessments, validate: validate}

	g.POST("", api.create, jwt)
	g.GET("", api.query, jwt)
	g.GET("/enrollments", api.enrollments, jwt)
	g.GET("/faculties", api.faculties, jwt)
	g.GET("/assessments_results_stats/:code", api.stats, jwt)
	g.GET("/:code", api.retrieve, jwt)
	g.PUT("/:code", api.update, jwt)
	g.PUT("/:code/photo", api.uploadPhoto, jwt)
	g.GET("/:code/enrollment_status", api.enrollmentStatus, jwt)
	g.GET("/:code/assessments", api.assessmentList, jwt)
	g.DELETE("/:code", api.destroy, jwt)
}

func (api *courseApi) create(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data course.CourseInput
	if err := bindValid(ctx, api.validate, &data, "CourseInput"); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) query(ctx echo.Context) error {
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	courses, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) enrollments(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var filter course.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	courses, err := api.svc.QueryEnrollments(ctx.Request().Context(), p, filter)
	if err != nil {
		return errors.Wrap(err, "querying user courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) faculties(ctx echo.Context) error {
	faculties, err := api.svc.Faculties(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying faculties")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"faculties": faculties})
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data course.CourseInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CourseInput")
	}
	data.Code = ctx.Param("code")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), p, ctx.Param("code"), data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) uploadPhoto(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: "this field is required"})
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	c, err := api.svc.UploadPhoto(ctx.Request().Context(), p, ctx.Param("code"), src)
	if err != nil {
		return errors.Wrap(err, "uploading course photo")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) enrollmentStatus(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	status, err := api.svc.EnrollmentStatus(ctx.Request().Context(), p, ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "getting enrollment status")
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *courseApi) assessmentList(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	isMarked, err := queryBool(ctx, "is_marked")
	if err != nil {
		return err
	}
	qf := assessment.QueryFilter{Status: ctx.QueryParam("status"), IsMarked: isMarked}

	asmts, err := api.assessments.ListByCourse(ctx.Request().Context(), p, ctx.Param("code"), qf)
	if err != nil {
		return errors.Wrap(err, "listing course assessments")
	}
	return ctx.JSON(http.StatusOK, asmts)
}

func (api *courseApi) stats(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	stats, err := api.assessments.CourseStats(ctx.Request().Context(), p, ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "computing course stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), p, ctx.Param("code")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
