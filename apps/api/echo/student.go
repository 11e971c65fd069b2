package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
)

type studentApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	g.GET("/enrolled/:code/count", api.count, jwt)
	g.GET("/enrolled/:code", api.list(true), jwt)
	g.GET("/enrolled/:code/requests", api.list(false), jwt)
	g.POST("", api.importCSV, jwt)
	g.POST("/enroll_request", api.toggleRequest, jwt)
	g.POST("/enroll", api.enroll, jwt)
	g.PUT("/approve_enrollment/:code/:id", api.approve, jwt)
	g.PUT("/approve_all_enrollments/:code", api.approveAll, jwt)
	g.PUT("", api.accept, jwt)
	g.DELETE("/all/:code", api.removePending, jwt)
	g.DELETE("/:code/:id", api.remove, jwt)
}

func (api *studentApi) count(ctx echo.Context) error {
	n, err := api.svc.CountStudents(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *studentApi) list(accepted bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := principal(ctx)
		if err != nil {
			return err
		}
		var filter course.StudentFilter
		if err := ctx.Bind(&filter); err != nil {
			return errors.Wrap(err, "binding to StudentFilter")
		}

		students, err := api.svc.ListStudents(ctx.Request().Context(), p, ctx.Param("code"), accepted, filter)
		if err != nil {
			return errors.Wrap(err, "listing students")
		}
		return ctx.JSON(http.StatusOK, students)
	}
}

// importCSV enrolls the students of a class list uploaded as the multipart "file" field.
func (api *studentApi) importCSV(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	code := core.CleanString(ctx.FormValue("course_code"))
	if code == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "course_code", Error: "this field is required"})
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

	n, err := api.svc.ImportStudents(ctx.Request().Context(), p, code, src)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusCreated, CountResponse{Count: n})
}

func (api *studentApi) toggleRequest(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data CourseCodeRequest
	if err := bindValid(ctx, api.validate, &data, "CourseCodeRequest"); err != nil {
		return err
	}

	requested, err := api.svc.ToggleEnrollmentRequest(ctx.Request().Context(), p, data.CourseCode)
	if err != nil {
		return errors.Wrap(err, "toggling enrollment request")
	}
	if requested {
		return ctx.JSON(http.StatusCreated, "Successfully requested enrollment.")
	}
	return ctx.JSON(http.StatusCreated, "Successfully cancelled enrollment.")
}

func (api *studentApi) enroll(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data course.NewEnrollment
	if err := bindValid(ctx, api.validate, &data, "NewEnrollment"); err != nil {
		return err
	}

	e, err := api.svc.Enroll(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *studentApi) approve(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.ApproveEnrollment(ctx.Request().Context(), p, ctx.Param("code"), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "approving enrollment")
	}
	return ctx.JSON(http.StatusCreated, "Enrollment approved!")
}

func (api *studentApi) approveAll(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	n, err := api.svc.ApproveAllEnrollments(ctx.Request().Context(), p, ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "approving enrollments")
	}
	return ctx.JSON(http.StatusCreated, CountResponse{Count: n})
}

func (api *studentApi) accept(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data CourseCodeRequest
	if err := bindValid(ctx, api.validate, &data, "CourseCodeRequest"); err != nil {
		return err
	}

	e, err := api.svc.Accept(ctx.Request().Context(), p, data.CourseCode)
	if err != nil {
		return errors.Wrap(err, "accepting enrollment")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *studentApi) remove(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveStudent(ctx.Request().Context(), p, ctx.Param("code"), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "removing student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) removePending(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.RemovePendingStudents(ctx.Request().Context(), p, ctx.Param("code")); err != nil {
		return errors.Wrap(err, "removing pending students")
	}
	return ctx.NoContent(http.StatusNoContent)
}
