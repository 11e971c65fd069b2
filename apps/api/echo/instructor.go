package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/course"
)

type instructorApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerInstructorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, validate *validator.Validate) {
	api := instructorApi{svc: svc, validate: validate}

	g.GET("/count/:code", api.count, jwt)
	g.POST("/enroll_request", api.toggleRequest, jwt)
	g.POST("", api.join, jwt)
	g.GET("/coordinators/:code", api.list(course.GroupCoordinators), jwt)
	g.GET("/requests/:code", api.list(course.GroupRequests), jwt)
	g.GET("/:code", api.list(course.GroupInstructors), jwt)
	g.PUT("/:id", api.approve, jwt)
	g.DELETE("/:id/:code", api.remove, jwt)
}

// CourseCodeRequest names the course an instructor or student action applies to.
type CourseCodeRequest struct {
	CourseCode string `json:"course_code" form:"course_code" validate:"required,notblank"`
}

func (cr *CourseCodeRequest) Validate(validate *validator.Validate) error {
	cr.CourseCode = core.CleanString(cr.CourseCode)
	return validate.Struct(cr)
}

func (api *instructorApi) count(ctx echo.Context) error {
	n, err := api.svc.CountInstructors(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "counting instructors")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *instructorApi) toggleRequest(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data CourseCodeRequest
	if err := bindValid(ctx, api.validate, &data, "CourseCodeRequest"); err != nil {
		return err
	}

	requested, err := api.svc.ToggleInstructorRequest(ctx.Request().Context(), p, data.CourseCode)
	if err != nil {
		return errors.Wrap(err, "toggling instructor request")
	}
	if requested {
		return ctx.JSON(http.StatusCreated, "Successfully requested enrollment.")
	}
	return ctx.JSON(http.StatusCreated, "Successfully cancelled enrollment.")
}

func (api *instructorApi) join(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data CourseCodeRequest
	if err := bindValid(ctx, api.validate, &data, "CourseCodeRequest"); err != nil {
		return err
	}

	ci, err := api.svc.Join(ctx.Request().Context(), p, data.CourseCode)
	if err != nil {
		return errors.Wrap(err, "joining course")
	}
	return ctx.JSON(http.StatusCreated, ci)
}

func (api *instructorApi) list(group course.InstructorGroup) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := principal(ctx)
		if err != nil {
			return err
		}
		instructors, err := api.svc.ListInstructors(ctx.Request().Context(), p, ctx.Param("code"), group)
		if err != nil {
			return errors.Wrap(err, "listing instructors")
		}
		return ctx.JSON(http.StatusOK, instructors)
	}
}

func (api *instructorApi) approve(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data CourseCodeRequest
	if err := bindValid(ctx, api.validate, &data, "CourseCodeRequest"); err != nil {
		return err
	}

	ci, err := api.svc.ApproveInstructor(ctx.Request().Context(), p, instructorParam(ctx), data.CourseCode)
	if err != nil {
		return errors.Wrap(err, "approving instructor")
	}
	return ctx.JSON(http.StatusCreated, ci)
}

// instructorParam reads the ID of PUT /:id. That route shares its param node with GET /:code,
// and echo names the node after the first route registered, so the value is read by position.
func instructorParam(ctx echo.Context) string {
	if vals := ctx.ParamValues(); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func (api *instructorApi) remove(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveInstructor(ctx.Request().Context(), p, ctx.Param("id"), ctx.Param("code")); err != nil {
		return errors.Wrap(err, "removing instructor")
	}
	return ctx.NoContent(http.StatusNoContent)
}
