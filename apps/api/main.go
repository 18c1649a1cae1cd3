package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"net/mail"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/crescendoapp/crescendo/apps/api/echo"
	"github.com/crescendoapp/crescendo/core"
	"github.com/crescendoapp/crescendo/core/calendar"
	"github.com/crescendoapp/crescendo/core/group"
	"github.com/crescendoapp/crescendo/core/instrument"
	"github.com/crescendoapp/crescendo/core/room"
	"github.com/crescendoapp/crescendo/core/session"
	"github.com/crescendoapp/crescendo/core/user"
	emailsvc "github.com/crescendoapp/crescendo/services/email"
	logsvc "github.com/crescendoapp/crescendo/services/logger"
	"github.com/crescendoapp/crescendo/storage/database"
	inmemdb "github.com/crescendoapp/crescendo/storage/database/inmem"
	sqlxrepos "github.com/crescendoapp/crescendo/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up repositories
	repos, dbClose, err := setUpRepos(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer dbClose()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.TestMode {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(repos.user)
	grpSvc := group.NewService(repos.group)
	roomSvc := room.NewService(repos.room)
	insSvc := instrument.NewService(repos.instrument)
	dir := &directory{usrSvc: usrSvc, grpSvc: grpSvc}
	sessSvc := session.NewService(repos.session, dir, mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	core.ParseEmailTemplates(conf, logger)

	// warm the calendar cache
	state := calendar.NewState()
	sessions, err := sessSvc.QueryAll()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading sessions: %v", err), err)
	}
	state.Load(sessions)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		SessionSvc:    sessSvc,
		GroupSvc:      grpSvc,
		RoomSvc:       roomSvc,
		InstrumentSvc: insSvc,
		CalState:      state,
		Validate:      validate,
		Translator:    translator,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type repoSet struct {
	user       user.Repository
	session    session.Repository
	group      group.Repository
	room       room.Repository
	instrument instrument.Repository
}

func setUpRepos(conf *core.Config) (*repoSet, func(), error) {
	if conf.Database.Engine != "postgres" {
		// map-backed storage for local development
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		repos := &repoSet{
			user:       inmemdb.NewUserRepository(db),
			session:    inmemdb.NewSessionRepository(db),
			group:      inmemdb.NewGroupRepository(db),
			room:       inmemdb.NewRoomRepository(db),
			instrument: inmemdb.NewInstrumentRepository(db),
		}
		return repos, func() {}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	dbx := sqlx.NewDb(db, conf.Database.Engine)
	repos := &repoSet{
		user:       sqlxrepos.NewUserRepository(dbx),
		session:    sqlxrepos.NewSessionRepository(dbx),
		group:      sqlxrepos.NewGroupRepository(dbx),
		room:       sqlxrepos.NewRoomRepository(dbx),
		instrument: sqlxrepos.NewInstrumentRepository(dbx),
	}
	return repos, func() { _ = db.Close() }, nil
}

// directory resolves display names and notification recipients for sessions.
type directory struct {
	usrSvc user.ServiceInterface
	grpSvc group.ServiceInterface
}

var _ session.Directory = (*directory)(nil)

func (d *directory) StudentName(id int) (string, error) {
	usr, err := d.usrSvc.GetByID(id)
	if err != nil {
		return "", errors.Wrap(err, "finding student")
	}
	return usr.Username, nil
}

func (d *directory) GroupName(id int) (string, error) {
	grp, err := d.grpSvc.GetByID(id)
	if err != nil {
		return "", errors.Wrap(err, "finding group")
	}
	return grp.Name, nil
}

func (d *directory) Recipients(s session.Session) ([]mail.Address, error) {
	switch {
	case s.UserID != nil:
		usr, err := d.usrSvc.GetByID(*s.UserID)
		if err != nil {
			return nil, errors.Wrap(err, "finding student")
		}
		return []mail.Address{{Name: usr.Username, Address: usr.Email}}, nil
	case s.GroupID != nil:
		ids, err := d.grpSvc.Members(*s.GroupID)
		if err != nil {
			return nil, errors.Wrap(err, "querying members")
		}
		addrs := make([]mail.Address, 0, len(ids))
		for _, id := range ids {
			usr, err := d.usrSvc.GetByID(id)
			if err != nil {
				continue
			}
			addrs = append(addrs, mail.Address{Name: usr.Username, Address: usr.Email})
		}
		return addrs, nil
	}
	return nil, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
