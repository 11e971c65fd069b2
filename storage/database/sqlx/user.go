package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/ChukwumaKingsley/smart-school-forked/core"
	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

const (
	tableStudents    = "students"
	tableInstructors = "instructors"
)

var userColumns = []string{"id", "title", "name", "email", "department", "faculty", "major", "bio", "photo_url", "password_hash"}

type userRepository struct {
	repo
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{repo: newRepo(db)}
}

func userTable(isInstructor bool) string {
	if isInstructor {
		return tableInstructors
	}
	return tableStudents
}

func (repo userRepository) trapErr(err error, msg string) error {
	if isUniqueViolation(err) {
		return user.ErrEmailExists
	}
	return trapErr(err, user.ErrNotFound, msg)
}

func (repo userRepository) getFrom(ctx context.Context, table string, where sq.Eq) (user.User, error) {
	cols := userColumns
	if table == tableStudents {
		cols = append(cols[:len(cols):len(cols)], "level")
	}

	var usr user.User
	err := repo.get(ctx, repo.db, &usr, repo.sb.Select(cols...).From(table).Where(where))
	if err != nil {
		return user.User{}, repo.trapErr(err, "getting user")
	}
	usr.IsInstructor = table == tableInstructors
	return usr, nil
}

// getFirst looks up tables in order and returns the first match.
func (repo userRepository) getFirst(ctx context.Context, where sq.Eq, tables ...string) (user.User, error) {
	for _, table := range tables {
		usr, err := repo.getFrom(ctx, table, where)
		if err == nil || !core.IsNotFound(err) {
			return usr, err
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.sb.Insert(userTable(usr.IsInstructor))
	if usr.IsInstructor {
		q = q.Columns(userColumns...).Values(
			usr.ID, usr.Title, usr.Name, usr.Email, usr.Department, usr.Faculty,
			usr.Major, usr.Bio, usr.PhotoURL, string(usr.PasswordHash),
		)
	} else {
		q = q.Columns(append(userColumns[:len(userColumns):len(userColumns)], "level")...).Values(
			usr.ID, usr.Title, usr.Name, usr.Email, usr.Department, usr.Faculty,
			usr.Major, usr.Bio, usr.PhotoURL, string(usr.PasswordHash), usr.Level,
		)
	}
	if _, err := repo.exec(ctx, repo.db, q); err != nil {
		return user.User{}, repo.trapErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getFirst(ctx, sq.Eq{"id": id}, tableInstructors, tableStudents)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getFirst(ctx, sq.Eq{"email": email}, tableStudents, tableInstructors)
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.sb.Update(userTable(usr.IsInstructor)).
		Set("title", usr.Title).
		Set("name", usr.Name).
		Set("email", usr.Email).
		Set("department", usr.Department).
		Set("faculty", usr.Faculty).
		Set("major", usr.Major).
		Set("bio", usr.Bio).
		Where(sq.Eq{"id": usr.ID})
	if !usr.IsInstructor {
		q = q.Set("level", usr.Level)
	}

	n, err := repo.exec(ctx, repo.db, q)
	if err != nil {
		return user.User{}, repo.trapErr(err, "updating user")
	}
	if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) SetPasswordHash(ctx context.Context, usr user.User) error {
	q := repo.sb.Update(userTable(usr.IsInstructor)).
		Set("password_hash", string(usr.PasswordHash)).
		Where(sq.Eq{"id": usr.ID})
	if _, err := repo.exec(ctx, repo.db, q); err != nil {
		return repo.trapErr(err, "setting password")
	}
	return nil
}

func (repo userRepository) SetPhotoURL(ctx context.Context, usr user.User) error {
	q := repo.sb.Update(userTable(usr.IsInstructor)).
		Set("photo_url", usr.PhotoURL).
		Where(sq.Eq{"id": usr.ID})
	if _, err := repo.exec(ctx, repo.db, q); err != nil {
		return repo.trapErr(err, "setting photo")
	}
	return nil
}
