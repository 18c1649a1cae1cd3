package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
)

type roomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) room.Repository {
	return &roomRepository{db: db}
}

func (repo *roomRepository) QueryAllRooms() ([]room.Room, error) {
	var rooms []room.Room
	q := `SELECT id, name, capacity FROM room ORDER BY id`
	if err := repo.db.Select(&rooms, q); err != nil {
		return nil, wrapDBErr(err, "querying rooms")
	}
	return rooms, nil
}

func (repo *roomRepository) GetRoomByID(id int) (room.Room, error) {
	var r room.Room
	if err := repo.db.Get(&r, `SELECT id, name, capacity FROM room WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return room.Room{}, room.ErrNotFound
		}
		return room.Room{}, wrapDBErr(err, "getting room")
	}
	return r, nil
}

type instrumentRepository struct {
	db *sqlx.DB
}

func NewInstrumentRepository(db *sqlx.DB) instrument.Repository {
	return &instrumentRepository{db: db}
}

func (repo *instrumentRepository) QueryAllInstruments() ([]instrument.Instrument, error) {
	var instruments []instrument.Instrument
	q := `SELECT id, name FROM instrument ORDER BY id`
	if err := repo.db.Select(&instruments, q); err != nil {
		return nil, wrapDBErr(err, "querying instruments")
	}
	return instruments, nil
}

func (repo *instrumentRepository) GetInstrumentByID(id int) (instrument.Instrument, error) {
	var ins instrument.Instrument
	if err := repo.db.Get(&ins, `SELECT id, name FROM instrument WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return instrument.Instrument{}, instrument.ErrNotFound
		}
		return instrument.Instrument{}, wrapDBErr(err, "getting instrument")
	}
	return ins, nil
}
