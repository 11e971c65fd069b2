package assessment

import (
	"context"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// getDraft returns the assessment when p may edit its content.
func (svc *Service) getDraft(ctx context.Context, p core.Principal, id string) (Assessment, error) {
	a, err := svc.getForInstructor(ctx, p, id)
	if err != nil {
		return Assessment{}, err
	}
	if a.Status != StatusDraft {
		return Assessment{}, ErrNotDraft
	}
	return a, nil
}

// Instructions

func (svc *Service) AddInstructions(ctx context.Context, p core.Principal, id string, ni NewInstructions) ([]Instruction, error) {
	a, err := svc.getDraft(ctx, p, id)
	if err != nil {
		return nil, err
	}

	instructions := make([]Instruction, len(ni.Instructions))
	for i, text := range ni.Instructions {
		instructions[i] = Instruction{ID: core.NewID(), AssessmentID: id, Instruction: text}
	}
	if err := svc.repo.CreateInstructions(ctx, instructions...); err != nil {
		return nil, err
	}
	svc.changed(ctx, p, a, "", nil)
	return instructions, nil
}

func (svc *Service) UpdateInstruction(ctx context.Context, p core.Principal, instructionID string, ui UpdateInstruction) (Instruction, error) {
	ins, err := svc.repo.GetInstruction(ctx, instructionID)
	if err != nil {
		return Instruction{}, err
	}
	if _, err := svc.getDraft(ctx, p, ins.AssessmentID); err != nil {
		return Instruction{}, err
	}

	ins.Instruction = ui.Instruction
	if err := svc.repo.UpdateInstruction(ctx, ins); err != nil {
		return Instruction{}, err
	}
	return ins, nil
}

func (svc *Service) DeleteInstruction(ctx context.Context, p core.Principal, instructionID string) error {
	ins, err := svc.repo.GetInstruction(ctx, instructionID)
	if err != nil {
		return err
	}
	if _, err := svc.getDraft(ctx, p, ins.AssessmentID); err != nil {
		return err
	}
	return svc.repo.DeleteInstruction(ctx, instructionID)
}

// Questions

func (svc *Service) AddQuestion(ctx context.Context, p core.Principal, id string, qi QuestionInput) (Question, error) {
	a, err := svc.getDraft(ctx, p, id)
	if err != nil {
		return Question{}, err
	}

	q := qi.question(core.NewID(), id)
	if err := svc.repo.CreateQuestion(ctx, q); err != nil {
		return Question{}, err
	}
	svc.changed(ctx, p, a, "", nil)
	return q, nil
}

// UpdateQuestion replaces the question fields. Options are managed separately.
func (svc *Service) UpdateQuestion(ctx context.Context, p core.Principal, questionID string, qi QuestionInput) (Question, error) {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return Question{}, err
	}
	if _, err := svc.getDraft(ctx, p, q.AssessmentID); err != nil {
		return Question{}, err
	}

	upd := qi.question(q.ID, q.AssessmentID)
	upd.Options = nil
	if err := svc.repo.UpdateQuestion(ctx, upd); err != nil {
		return Question{}, err
	}
	return upd, nil
}

func (svc *Service) DeleteQuestion(ctx context.Context, p core.Principal, questionID string) error {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if _, err := svc.getDraft(ctx, p, q.AssessmentID); err != nil {
		return err
	}
	return svc.repo.DeleteQuestion(ctx, questionID)
}

// Options

func (svc *Service) AddOptions(ctx context.Context, p core.Principal, questionID string, no NewOptions) ([]Option, error) {
	q, err := svc.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := svc.getDraft(ctx, p, q.AssessmentID); err != nil {
		return nil, err
	}

	options := make([]Option, len(no.Options))
	for i, oi := range no.Options {
		options[i] = oi.option(core.NewID(), questionID)
	}
	if err := svc.repo.CreateOptions(ctx, options...); err != nil {
		return nil, err
	}
	return options, nil
}

// optionDraft returns the option with its question when p may edit it.
func (svc *Service) optionDraft(ctx context.Context, p core.Principal, optionID string) (Option, error) {
	o, err := svc.repo.GetOption(ctx, optionID)
	if err != nil {
		return Option{}, err
	}
	q, err := svc.repo.GetQuestion(ctx, o.QuestionID)
	if err != nil {
		return Option{}, err
	}
	if _, err := svc.getDraft(ctx, p, q.AssessmentID); err != nil {
		return Option{}, err
	}
	return o, nil
}

func (svc *Service) UpdateOption(ctx context.Context, p core.Principal, optionID string, oi OptionInput) (Option, error) {
	o, err := svc.optionDraft(ctx, p, optionID)
	if err != nil {
		return Option{}, err
	}

	o = oi.option(o.ID, o.QuestionID)
	if err := svc.repo.UpdateOption(ctx, o); err != nil {
		return Option{}, err
	}
	return o, nil
}

func (svc *Service) DeleteOption(ctx context.Context, p core.Principal, optionID string) error {
	if _, err := svc.optionDraft(ctx, p, optionID); err != nil {
		return err
	}
	return svc.repo.DeleteOption(ctx, optionID)
}
