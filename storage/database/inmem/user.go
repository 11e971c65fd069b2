package inmemdb

import (
	"context"
	"sort"

	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

// query returns students before instructors, each sorted by ID.
func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.t))
	for _, u := range repo.db.t {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].IsInstructor != users[j].IsInstructor {
			return !users[i].IsInstructor
		}
		return users[i].ID < users[j].ID
	})
	return users
}

func (repo *userRepository) emailTaken(email, exclID string) bool {
	for _, usr := range repo.db.t {
		if usr.Email == email && usr.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.t[usr.ID]; ok {
		return user.User{}, user.ErrRegNumExists
	}
	if repo.emailTaken(usr.Email, "") {
		return user.User{}, user.ErrEmailExists
	}
	repo.db.t[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.t[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only profile fields are saved
	orig, ok := repo.db.t[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, usr.ID) {
		return user.User{}, user.ErrEmailExists
	}
	orig.Title = usr.Title
	orig.Name = usr.Name
	orig.Email = usr.Email
	orig.Department = usr.Department
	orig.Faculty = usr.Faculty
	orig.Major = usr.Major
	orig.Bio = usr.Bio
	if !orig.IsInstructor {
		orig.Level = usr.Level
	}
	return *orig, nil
}

func (repo *userRepository) SetPasswordHash(_ context.Context, usr user.User) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.t[usr.ID]
	if !ok {
		return user.ErrNotFound
	}
	orig.PasswordHash = usr.PasswordHash
	return nil
}

func (repo *userRepository) SetPhotoURL(_ context.Context, usr user.User) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.t[usr.ID]
	if !ok {
		return user.ErrNotFound
	}
	orig.PhotoURL = usr.PhotoURL
	return nil
}
