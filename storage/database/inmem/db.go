// Package inmemdb is a map-backed storage implementation used by tests and
// local development without postgres.
package inmemdb

import (
	"sync"

	"github.com/crescendoapp/crescendo/core/group"
	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
	"github.com/crescendoapp/crescendo/core/session"
	"github.com/crescendoapp/crescendo/core/user"
)

type (
	DB struct {
		user       *userTable
		session    *sessionTable
		group      *groupTable
		room       *roomTable
		instrument *instrumentTable
	}

	userTable struct {
		sync.RWMutex
		pk    int
		table map[int]*user.User
	}

	sessionTable struct {
		sync.RWMutex
		pk    int
		table map[int]*session.Session
	}

	groupTable struct {
		sync.RWMutex
		pk      int
		table   map[int]*group.Group
		members []group.Member
	}

	roomTable struct {
		sync.RWMutex
		pk    int
		table map[int]*room.Room
	}

	instrumentTable struct {
		sync.RWMutex
		pk    int
		table map[int]*instrument.Instrument
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[int]*user.User)},
		session:    &sessionTable{table: make(map[int]*session.Session)},
		group:      &groupTable{table: make(map[int]*group.Group)},
		room:       &roomTable{table: make(map[int]*room.Room)},
		instrument: &instrumentTable{table: make(map[int]*instrument.Instrument)},
	}
	return db, nil
}
