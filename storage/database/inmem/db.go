// Package inmemdb keeps repositories in memory. It backs unit tests that do not need SQL.
package inmemdb

import (
	"sync"

	"github.com/ChukwumaKingsley/smart-school-forked/core/user"
)

type (
	DB struct {
		user *userTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user: &userTable{t: make(map[string]*user.User)},
	}
}
