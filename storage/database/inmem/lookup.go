package inmemdb

import (
	"sort"

	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
)

type roomRepository struct {
	db *roomTable
}

func NewRoomRepository(db *DB) *roomRepository {
	return &roomRepository{db: db.room}
}

// AddRoom seeds a room, used by tests and the admin CLI.
func (repo *roomRepository) AddRoom(r room.Room) room.Room {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	r.ID = repo.db.pk
	repo.db.table[r.ID] = &r
	return r
}

func (repo *roomRepository) QueryAllRooms() ([]room.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rooms := make([]room.Room, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		rooms = append(rooms, *r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (repo *roomRepository) GetRoomByID(id int) (room.Room, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return *r, nil
	}
	return room.Room{}, room.ErrNotFound
}

type instrumentRepository struct {
	db *instrumentTable
}

func NewInstrumentRepository(db *DB) *instrumentRepository {
	return &instrumentRepository{db: db.instrument}
}

// AddInstrument seeds an instrument, used by tests and the admin CLI.
func (repo *instrumentRepository) AddInstrument(ins instrument.Instrument) instrument.Instrument {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	ins.ID = repo.db.pk
	repo.db.table[ins.ID] = &ins
	return ins
}

func (repo *instrumentRepository) QueryAllInstruments() ([]instrument.Instrument, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	instruments := make([]instrument.Instrument, 0, len(repo.db.table))
	for _, ins := range repo.db.table {
		instruments = append(instruments, *ins)
	}
	sort.Slice(instruments, func(i, j int) bool { return instruments[i].ID < instruments[j].ID })
	return instruments, nil
}

func (repo *instrumentRepository) GetInstrumentByID(id int) (instrument.Instrument, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ins, ok := repo.db.table[id]; ok {
		return *ins, nil
	}
	return instrument.Instrument{}, instrument.ErrNotFound
}
