package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
)

type lookupApi struct {
	roomSvc       *room.Service
	instrumentSvc *instrument.Service
}

func registerLookupAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := lookupApi{
		roomSvc:       deps.RoomSvc,
		instrumentSvc: deps.InstrumentSvc,
	}

	g.GET("/rooms", api.queryRooms, jwt)
	g.GET("/instruments", api.queryInstruments, jwt)
}

func (api *lookupApi) queryRooms(ctx echo.Context) error {
	rooms, err := api.roomSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying rooms")
	}
	if rooms == nil {
		rooms = []room.Room{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *lookupApi) queryInstruments(ctx echo.Context) error {
	instruments, err := api.instrumentSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying instruments")
	}
	if instruments == nil {
		instruments = []instrument.Instrument{}
	}
	return ctx.JSON(http.StatusOK, instruments)
}
