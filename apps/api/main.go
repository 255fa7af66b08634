package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/adapt/apps/api/echo"
	"github.com/trezcool/adapt/core"
	"github.com/trezcool/adapt/core/lostfound"
	"github.com/trezcool/adapt/core/maildir"
	"github.com/trezcool/adapt/core/qna"
	"github.com/trezcool/adapt/core/sharedlib"
	"github.com/trezcool/adapt/core/user"
	"github.com/trezcool/adapt/realtime"
	emailsvc "github.com/trezcool/adapt/services/email"
	logsvc "github.com/trezcool/adapt/services/logger"
	mediasvc "github.com/trezcool/adapt/services/media"
	"github.com/trezcool/adapt/storage/database"
	sqlxrepos "github.com/trezcool/adapt/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	var media core.MediaService
	if conf.Debug && conf.Cloudinary.Name == "" {
		media = mediasvc.NewDummyService()
	} else {
		if media, err = mediasvc.NewCloudinaryService(conf, logger); err != nil {
			logger.Fatal(fmt.Sprintf("setting up media service: %v", err), err)
		}
	}

	hub := realtime.NewHub(logger, newOriginChecker(conf))

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, conf)
	qnaSvc := qna.NewService(sqlxrepos.NewQnARepository(db), media, hub)
	libSvc := sharedlib.NewService(sqlxrepos.NewSharedLibRepository(db), media)
	mailDirSvc := maildir.NewService(sqlxrepos.NewMailDirRepository(db))
	lnfSvc := lostfound.NewService(sqlxrepos.NewLostFoundRepository(db), media, hub)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			QnASvc:       qnaSvc,
			SharedLibSvc: libSvc,
			MailDirSvc:   mailDirSvc,
			LostFoundSvc: lnfSvc,
			Hub:          hub,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newOriginChecker(conf *core.Config) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range conf.Server.AllowedOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
