package user

import (
	"context"
	"time"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

type serviceMock struct {
	*service
}

// NewServiceMock returns a ServiceInterface that sends password reset mails synchronously.
// nowFunc, when given, drives token generation.
func NewServiceMock(
	repo Repository,
	mailSvc core.EmailService,
	storage core.FileStorage,
	conf *core.Config,
	nowFunc ...func() time.Time,
) ServiceInterface {
	svc := NewService(repo, mailSvc, storage, conf).(*service)
	if len(nowFunc) > 0 {
		svc.tokenGen.nowFunc = nowFunc[0]
	}
	return &serviceMock{service: svc}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeResetToken exposes token generation to API tests.
func (svc *serviceMock) MakeResetToken(usr User) string {
	return svc.tokenGen.makeToken(usr)
}
