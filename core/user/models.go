package user

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
)

// User is either a student (ID is the registration number) or an instructor (ID is generated).
type User struct {
	ID           string      `json:"id" db:"id"`
	Title        null.String `json:"title" db:"title"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	Department   string      `json:"department" db:"department"`
	Faculty      string      `json:"faculty" db:"faculty"`
	Level        null.Int    `json:"level" db:"level"` // students only
	Major        null.String `json:"major" db:"major"`
	Bio          null.String `json:"bio" db:"bio"`
	PhotoURL     null.String `json:"photo_url" db:"photo_url"`
	IsInstructor bool        `json:"is_instructor" db:"-"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) Principal() core.Principal {
	return core.Principal{ID: u.ID, IsInstructor: u.IsInstructor}
}

// NewUser contains information needed to register a User.
// A registration number in ID makes the User a student; no ID makes it an instructor.
type NewUser struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Name       string `json:"name" validate:"required,notblank"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required,notblank"`
	Faculty    string `json:"faculty" validate:"required,notblank"`
	Level      *int   `json:"level" validate:"omitempty,gt=0"`
	Major      string `json:"major"`
	Bio        string `json:"bio"`
	Password   string `json:"password" validate:"required"`
}

func (nu NewUser) IsStudent() bool { return nu.ID != "" }

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.ID = core.CleanString(nu.ID)
	nu.Title = core.CleanString(nu.Title)
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Department = core.CleanString(nu.Department)
	nu.Faculty = core.CleanString(nu.Faculty)
	nu.Major = core.CleanString(nu.Major)
	nu.Bio = core.CleanString(nu.Bio)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Blank fields keep their current value.
type UpdateUser struct {
	Title      string `json:"title"`
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department"`
	Faculty    string `json:"faculty"`
	Level      *int   `json:"level" validate:"omitempty,gt=0"`
	Major      string `json:"major"`
	Bio        string `json:"bio"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Title = core.CleanString(uu.Title)
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Department = core.CleanString(uu.Department)
	uu.Faculty = core.CleanString(uu.Faculty)
	uu.Major = core.CleanString(uu.Major)
	uu.Bio = core.CleanString(uu.Bio)
	return validate.Struct(uu)
}

// apply merges the non-blank fields of uu into usr.
func (uu UpdateUser) apply(usr User) User {
	if uu.Title != "" {
		usr.Title = null.StringFrom(uu.Title)
	}
	if uu.Name != "" {
		usr.Name = uu.Name
	}
	if uu.Email != "" {
		usr.Email = uu.Email
	}
	if uu.Department != "" {
		usr.Department = uu.Department
	}
	if uu.Faculty != "" {
		usr.Faculty = uu.Faculty
	}
	if uu.Level != nil && !usr.IsInstructor {
		usr.Level = null.IntFrom(*uu.Level)
	}
	if uu.Major != "" {
		usr.Major = null.StringFrom(uu.Major)
	}
	if uu.Bio != "" {
		usr.Bio = null.StringFrom(uu.Bio)
	}
	return usr
}

type UpdatePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (up UpdatePassword) Validate(validate *validator.Validate) error { return validate.Struct(up) }

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type Login struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

func (l *Login) Validate(validate *validator.Validate) error {
	l.Username = core.CleanString(l.Username, true /* lower */)
	return validate.Struct(l)
}
