package user

import (
	"context"
	"fmt"
	"io"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

const photoSize = 400

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("User not found")
	ErrInvalidCredentials = core.NewForbiddenError("Invalid username or password!")
	ErrInvalidRegNum      = core.NewForbiddenError("Invalid registration number!")
	ErrEmailExists        = core.NewForbiddenError("Account with this email already exists.")
	ErrRegNumExists       = core.NewForbiddenError("Account with this registration number already exists.")
	ErrIncorrectPassword  = core.NewForbiddenError("Incorrect old password")
	ErrUnauthorized       = core.NewAccessDeniedError("Unauthorized to perform this action.")
	ErrInvalidResetLink   = core.NewValidationError(
		errors.New("invalid password reset link"),
		core.FieldError{Field: "token", Error: "invalid or expired token"},
	)
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		// GetUserByID looks up instructors first, then students.
		GetUserByID(ctx context.Context, id string) (User, error)
		// GetUserByEmail looks up students first, then instructors.
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetPasswordHash(ctx context.Context, usr User) error
		SetPhotoURL(ctx context.Context, usr User) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Update(ctx context.Context, p core.Principal, id string, uu UpdateUser) (User, error)
		UpdatePassword(ctx context.Context, p core.Principal, id string, up UpdatePassword) (User, error)
		SetPassword(ctx context.Context, id, pwd string) error
		UploadPhoto(ctx context.Context, p core.Principal, id string, r io.Reader) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		storage  core.FileStorage
		tokenGen *tokenGenerator
		appName  string
	}
)

func NewService(
	repo Repository,
	mailSvc core.EmailService,
	storage core.FileStorage,
	conf *core.Config,
) ServiceInterface {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		storage:  storage,
		tokenGen: newTokenGenerator(conf.SecretKey, conf.PasswordResetTimeoutDelta),
		appName:  conf.AppName,
	}
}

func (svc *service) checkEmailUniqueness(ctx context.Context, email string, exclID string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	switch {
	case core.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case usr.ID == exclID:
		return nil
	}
	return ErrEmailExists
}

// Create registers a student when nu carries a registration number, an instructor otherwise.
func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if nu.IsStudent() {
		if !IsValidRegNum(nu.ID) {
			return User{}, ErrInvalidRegNum
		}
		if _, err := svc.repo.GetUserByID(ctx, nu.ID); err == nil {
			return User{}, ErrRegNumExists
		} else if !core.IsNotFound(err) {
			return User{}, err
		}
	}
	if err := svc.checkEmailUniqueness(ctx, nu.Email, ""); err != nil {
		return User{}, err
	}

	usr := User{
		ID:           nu.ID,
		Title:        null.NewString(nu.Title, nu.Title != ""),
		Name:         nu.Name,
		Email:        nu.Email,
		Department:   nu.Department,
		Faculty:      nu.Faculty,
		Major:        null.NewString(nu.Major, nu.Major != ""),
		Bio:          null.NewString(nu.Bio, nu.Bio != ""),
		IsInstructor: !nu.IsStudent(),
	}
	if usr.IsInstructor {
		usr.ID = core.NewID()
	} else if nu.Level != nil {
		usr.Level = null.IntFrom(*nu.Level)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// getSelf fetches the User with id, as long as it is the caller.
func (svc *service) getSelf(ctx context.Context, p core.Principal, id string) (User, error) {
	if p.ID != id {
		return User{}, ErrUnauthorized
	}
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, p core.Principal, id string, uu UpdateUser) (User, error) {
	usr, err := svc.getSelf(ctx, p, id)
	if err != nil {
		return User{}, err
	}
	if uu.Email != "" && uu.Email != usr.Email {
		if err := svc.checkEmailUniqueness(ctx, uu.Email, usr.ID); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, uu.apply(usr))
}

func (svc *service) UpdatePassword(ctx context.Context, p core.Principal, id string, up UpdatePassword) (User, error) {
	usr, err := svc.getSelf(ctx, p, id)
	if err != nil {
		return User{}, err
	}
	if err := usr.CheckPassword(up.OldPassword); err != nil {
		return User{}, ErrIncorrectPassword
	}
	if err := usr.SetPassword(up.NewPassword); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	if err := svc.repo.SetPasswordHash(ctx, usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

// SetPassword sets the password of a User without any check (admin CLI).
func (svc *service) SetPassword(ctx context.Context, id, pwd string) error {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPasswordHash(ctx, usr)
}

func (svc *service) UploadPhoto(ctx context.Context, p core.Principal, id string, r io.Reader) (User, error) {
	usr, err := svc.getSelf(ctx, p, id)
	if err != nil {
		return User{}, err
	}

	buf, err := core.ProcessPhoto(r, photoSize, photoSize, core.PhotoFit)
	if err != nil {
		return User{}, err
	}
	url, err := svc.storage.Put(ctx, fmt.Sprintf("profile-pictures/%s.jpg", usr.ID), core.PhotoContentType, buf)
	if err != nil {
		return User{}, errors.Wrap(err, "storing photo")
	}

	usr.PhotoURL = null.StringFrom(url)
	if err := svc.repo.SetPhotoURL(ctx, usr); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) sendPasswordResetMail(usr User) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      fmt.Sprintf("Password reset on %s", svc.appName),
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"Name":  usr.Name,
			"UID":   EncodeUID(usr),
			"Token": svc.tokenGen.makeToken(usr),
		},
	}
	svc.mailSvc.SendMessages(msg)
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	id, err := decodeUID(rp.UID)
	if err != nil {
		return ErrInvalidResetLink
	}
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return ErrInvalidResetLink
		}
		return err
	}
	if err := svc.tokenGen.verifyToken(usr, rp.Token); err != nil {
		return ErrInvalidResetLink
	}

	if err := usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPasswordHash(ctx, usr)
}
