package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core/timerecord"
)

type timeRecordApi struct {
	svc *timerecord.Service
}

func registerTimeRecordAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *timerecord.Service) {
	api := timeRecordApi{svc: svc}

	g.POST("/:course_code/:assessment_id", api.start, jwt)
	g.GET("/:course_code/:assessment_id", api.retrieve, jwt)
	g.PUT("/end_assessment_time/:course_code/:assessment_id", api.end, jwt)
}

func (api *timeRecordApi) start(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	tr, err := api.svc.Start(ctx.Request().Context(), p, ctx.Param("course_code"), ctx.Param("assessment_id"))
	if err != nil {
		return errors.Wrap(err, "starting assessment time")
	}
	return ctx.JSON(http.StatusCreated, tr)
}

// retrieve returns the time record of the caller, opening it on first access.
func (api *timeRecordApi) retrieve(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	tr, err := api.svc.Start(ctx.Request().Context(), p, ctx.Param("course_code"), ctx.Param("assessment_id"))
	if err != nil {
		return errors.Wrap(err, "getting assessment time")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *timeRecordApi) end(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	tr, err := api.svc.End(ctx.Request().Context(), p, ctx.Param("course_code"), ctx.Param("assessment_id"))
	if err != nil {
		return errors.Wrap(err, "ending assessment time")
	}
	return ctx.JSON(http.StatusCreated, tr)
}
