package echoapi

import (
	"net/http"
	"testing"

	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
	"github.com/crescendoapp/crescendo/core/user"
)

func Test_lookupApi(t *testing.T) {
	app := setup(t)
	ann := createUser(t, app.usrRepo, "ann", "ann@test.cd", "passwd", user.RoleStudent, true)
	token := getToken(t, ann)

	studioA := app.roomRepo.AddRoom(room.Room{Name: "Studio A", Capacity: 2})
	hall := app.roomRepo.AddRoom(room.Room{Name: "Recital Hall", Capacity: 40})
	piano := app.instRepo.AddInstrument(instrument.Instrument{Name: "Piano"})
	violin := app.instRepo.AddInstrument(instrument.Instrument{Name: "Violin"})

	tests := []httpTest{
		{name: "rooms require auth", method: http.MethodGet, path: "/v1/rooms",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "rooms", method: http.MethodGet, path: "/v1/rooms", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, []room.Room{studioA, hall})},
		{name: "instruments", method: http.MethodGet, path: "/v1/instruments", token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, []instrument.Instrument{piano, violin})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
