package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	"github.com/labstack/echo/v4"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/crescendoapp/crescendo/core"
	"github.com/crescendoapp/crescendo/core/calendar"
	"github.com/crescendoapp/crescendo/core/group"
	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
	"github.com/crescendoapp/crescendo/core/session"
	"github.com/crescendoapp/crescendo/core/user"
	inmemdb "github.com/crescendoapp/crescendo/storage/database/inmem"
)

var (
	errMissingToken     = httpErr{Error: "missing or malformed jwt"}
	errPermissionDenied = httpErr{Error: "permission denied"}
	errNotFound         = httpErr{Error: "not found"}
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// nopLogger drops everything; API tests assert on responses, not logs.
type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

// recordingMailSvc captures messages synchronously.
type recordingMailSvc struct {
	sent []*core.EmailMessage
}

func (m *recordingMailSvc) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type (
	roomSeeder       interface{ AddRoom(room.Room) room.Room }
	instrumentSeeder interface {
		AddInstrument(instrument.Instrument) instrument.Instrument
	}
)

type testApp struct {
	server   Server
	conf     *core.Config
	state    *calendar.State
	mailSvc  *recordingMailSvc
	usrSvc   user.ServiceInterface
	sessSvc  session.ServiceInterface
	grpSvc   group.ServiceInterface
	usrRepo  user.Repository
	sessRepo session.Repository
	grpRepo  group.Repository
	roomRepo roomSeeder
	instRepo instrumentSeeder
}

func newTestConfig() *core.Config {
	return &core.Config{
		AppName:          "Crescendo",
		Env:              "TEST",
		TestMode:         true,
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Address: "noreply@localhost"},
		Server: core.ServerConfig{
			Host:                      "localhost",
			Port:                      8100,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// testDirectory resolves names and recipients from the in-memory repos.
type testDirectory struct {
	usrSvc user.ServiceInterface
	grpSvc group.ServiceInterface
}

func (d *testDirectory) StudentName(id int) (string, error) {
	usr, err := d.usrSvc.GetByID(id)
	if err != nil {
		return "", err
	}
	return usr.Username, nil
}

func (d *testDirectory) GroupName(id int) (string, error) {
	grp, err := d.grpSvc.GetByID(id)
	if err != nil {
		return "", err
	}
	return grp.Name, nil
}

func (d *testDirectory) Recipients(s session.Session) ([]mail.Address, error) {
	if s.UserID != nil {
		usr, err := d.usrSvc.GetByID(*s.UserID)
		if err != nil {
			return nil, err
		}
		return []mail.Address{{Name: usr.Username, Address: usr.Email}}, nil
	}
	return nil, nil
}

func setup(t *testing.T) *testApp {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	conf := newTestConfig()
	usrRepo := inmemdb.NewUserRepository(db)
	sessRepo := inmemdb.NewSessionRepository(db)
	grpRepo := inmemdb.NewGroupRepository(db)

	usrSvc := user.NewService(usrRepo)
	grpSvc := group.NewService(grpRepo)
	mailSvc := &recordingMailSvc{}
	dir := &testDirectory{usrSvc: usrSvc, grpSvc: grpSvc}
	sessSvc := session.NewService(sessRepo, dir, mailSvc)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	state := calendar.NewState()
	roomRepo := inmemdb.NewRoomRepository(db)
	instRepo := inmemdb.NewInstrumentRepository(db)

	server := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        nopLogger{},
		UserSvc:       usrSvc,
		SessionSvc:    sessSvc,
		GroupSvc:      grpSvc,
		RoomSvc:       room.NewService(roomRepo),
		InstrumentSvc: instrument.NewService(instRepo),
		CalState:      state,
		Validate:      validate,
		Translator:    translator,
	})

	return &testApp{
		server:   server,
		conf:     conf,
		state:    state,
		mailSvc:  mailSvc,
		usrSvc:   usrSvc,
		sessSvc:  sessSvc,
		grpSvc:   grpSvc,
		usrRepo:  usrRepo,
		sessRepo: sessRepo,
		grpRepo:  grpRepo,
		roomRepo: roomRepo,
		instRepo: instRepo,
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func createUser(t *testing.T, repo user.Repository, uname, email, pwd, role string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}
