package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/assessment"
)

type assessmentApi struct {
	svc      *assessment.Service
	validate *validator.Validate
}

func registerAssessmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *assessment.Service, validate *validator.Validate) {
	api := assessmentApi{svc: svc, validate: validate}

	// lifecycle
	g.POST("", api.create, jwt)
	g.PUT("/:id", api.update, jwt)
	g.PUT("/edit-schedule/:id", api.editSchedule, jwt)
	g.PUT("/:id/activate", api.transition("activating", svc.Activate), jwt)
	g.PUT("/:id/deactivate", api.transition("deactivating", svc.Deactivate), jwt)
	g.PUT("/:id/end-automatic", api.transition("ending", svc.EndAutomatic), jwt)
	g.PUT("/:id/end-manual", api.transition("ending", svc.EndManual), jwt)
	g.PUT("/:id/mark", api.transition("marking", svc.Mark), jwt)
	g.DELETE("/:id", api.destroy, jwt)

	// views
	g.GET("/:id", api.retrieve, jwt)
	g.GET("/:id/assessment_questions", api.paper(svc.AssessmentQuestions), jwt)
	g.GET("/:id/review", api.paper(svc.Review), jwt)
	g.GET("/:id/questions", api.questions, jwt)
	g.GET("/:id/results", api.results, jwt)
	g.GET("/:id/result_stats/:reg_num", api.resultStats, jwt)
	g.GET("/:id/student_result/:reg_num", api.studentResult, jwt)
	g.GET("/stats/:id", api.stats, jwt)

	// content
	g.POST("/:id/instructions", api.addInstructions, jwt)
	g.PUT("/instructions/:instruction_id", api.updateInstruction, jwt)
	g.DELETE("/instructions/:instruction_id", api.deleteInstruction, jwt)
	g.POST("/:id/questions", api.addQuestion, jwt)
	g.PUT("/questions/:question_id", api.updateQuestion, jwt)
	g.DELETE("/questions/:question_id", api.deleteQuestion, jwt)
	g.POST("/questions/:question_id/options", api.addOptions, jwt)
	g.PUT("/options/:option_id", api.updateOption, jwt)
	g.DELETE("/options/:option_id", api.deleteOption, jwt)

	// answers
	g.POST("/:id/submissions", api.submit, jwt)
	g.PUT("/:id/scores", api.setScores, jwt)
}

// Lifecycle

func (api *assessmentApi) create(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.NewAssessment
	if err := bindValid(ctx, api.validate, &data, "NewAssessment"); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assessmentApi) update(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.UpdateAssessment
	if err := bindValid(ctx, api.validate, &data, "UpdateAssessment"); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assessment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assessmentApi) editSchedule(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.Schedule
	if err := bindValid(ctx, api.validate, &data, "Schedule"); err != nil {
		return err
	}

	a, err := api.svc.EditSchedule(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "editing assessment schedule")
	}
	return ctx.JSON(http.StatusOK, a)
}

type transitionFunc func(ctx context.Context, p core.Principal, id string) (assessment.Assessment, error)

func (api *assessmentApi) transition(action string, fn transitionFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := principal(ctx)
		if err != nil {
			return err
		}
		a, err := fn(ctx.Request().Context(), p, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, action+" assessment")
		}
		return ctx.JSON(http.StatusCreated, a)
	}
}

func (api *assessmentApi) destroy(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Views

func (api *assessmentApi) retrieve(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Get(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assessment")
	}
	return ctx.JSON(http.StatusOK, a)
}

type paperFunc func(ctx context.Context, p core.Principal, id string) (assessment.Paper, error)

func (api *assessmentApi) paper(fn paperFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := principal(ctx)
		if err != nil {
			return err
		}
		paper, err := fn(ctx.Request().Context(), p, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "getting assessment paper")
		}
		return ctx.JSON(http.StatusOK, paper)
	}
}

func (api *assessmentApi) questions(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	questions, err := api.svc.Questions(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting questions")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"questions": questions})
}

func (api *assessmentApi) results(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var filter assessment.ResultFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to ResultFilter")
	}

	results, err := api.svc.Results(ctx.Request().Context(), p, ctx.Param("id"), filter)
	if err != nil {
		return errors.Wrap(err, "listing results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *assessmentApi) resultStats(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.ResultStats(ctx.Request().Context(), p, ctx.Param("id"), ctx.Param("reg_num"))
	if err != nil {
		return errors.Wrap(err, "getting result stats")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assessmentApi) studentResult(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	paper, err := api.svc.StudentResult(ctx.Request().Context(), p, ctx.Param("id"), ctx.Param("reg_num"))
	if err != nil {
		return errors.Wrap(err, "getting student result")
	}
	return ctx.JSON(http.StatusOK, paper)
}

func (api *assessmentApi) stats(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing assessment stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// Content

func (api *assessmentApi) addInstructions(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.NewInstructions
	if err := bindValid(ctx, api.validate, &data, "NewInstructions"); err != nil {
		return err
	}

	instructions, err := api.svc.AddInstructions(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding instructions")
	}
	return ctx.JSON(http.StatusCreated, instructions)
}

func (api *assessmentApi) updateInstruction(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.UpdateInstruction
	if err := bindValid(ctx, api.validate, &data, "UpdateInstruction"); err != nil {
		return err
	}

	ins, err := api.svc.UpdateInstruction(ctx.Request().Context(), p, ctx.Param("instruction_id"), data)
	if err != nil {
		return errors.Wrap(err, "updating instruction")
	}
	return ctx.JSON(http.StatusOK, ins)
}

func (api *assessmentApi) deleteInstruction(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteInstruction(ctx.Request().Context(), p, ctx.Param("instruction_id")); err != nil {
		return errors.Wrap(err, "deleting instruction")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) addQuestion(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.QuestionInput
	if err := bindValid(ctx, api.validate, &data, "QuestionInput"); err != nil {
		return err
	}

	q, err := api.svc.AddQuestion(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *assessmentApi) updateQuestion(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.QuestionInput
	if err := bindValid(ctx, api.validate, &data, "QuestionInput"); err != nil {
		return err
	}

	q, err := api.svc.UpdateQuestion(ctx.Request().Context(), p, ctx.Param("question_id"), data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, q)
}

func (api *assessmentApi) deleteQuestion(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), p, ctx.Param("question_id")); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *assessmentApi) addOptions(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.NewOptions
	if err := bindValid(ctx, api.validate, &data, "NewOptions"); err != nil {
		return err
	}

	options, err := api.svc.AddOptions(ctx.Request().Context(), p, ctx.Param("question_id"), data)
	if err != nil {
		return errors.Wrap(err, "adding options")
	}
	return ctx.JSON(http.StatusCreated, options)
}

func (api *assessmentApi) updateOption(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.OptionInput
	if err := bindValid(ctx, api.validate, &data, "OptionInput"); err != nil {
		return err
	}

	o, err := api.svc.UpdateOption(ctx.Request().Context(), p, ctx.Param("option_id"), data)
	if err != nil {
		return errors.Wrap(err, "updating option")
	}
	return ctx.JSON(http.StatusOK, o)
}

func (api *assessmentApi) deleteOption(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteOption(ctx.Request().Context(), p, ctx.Param("option_id")); err != nil {
		return errors.Wrap(err, "deleting option")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Answers

func (api *assessmentApi) submit(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.NewSubmissions
	if err := bindValid(ctx, api.validate, &data, "NewSubmissions"); err != nil {
		return err
	}

	total, err := api.svc.Submit(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting answers")
	}
	return ctx.JSON(http.StatusCreated, total)
}

func (api *assessmentApi) setScores(ctx echo.Context) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}
	var data assessment.NewScores
	if err := bindValid(ctx, api.validate, &data, "NewScores"); err != nil {
		return err
	}

	totals, err := api.svc.SetScores(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "setting scores")
	}
	return ctx.JSON(http.StatusOK, totals)
}
