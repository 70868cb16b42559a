// Package shared builds the dependencies common to the api, bot and admin binaries.
package shared

import (
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/trezcool/taskbell/core"
	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/link"
	"github.com/trezcool/taskbell/core/notification"
	"github.com/trezcool/taskbell/core/reminder"
	"github.com/trezcool/taskbell/services/logger"
	"github.com/trezcool/taskbell/services/notify"
	"github.com/trezcool/taskbell/storage/database"
	"github.com/trezcool/taskbell/storage/database/sqlx"
)

type Services struct {
	AccountRepo     account.Repository
	NotificationSvc *notification.Service
	LinkSvc         *link.Service
	ReminderSvc     *reminder.Service
}

// NewLogger returns a Rollbar logger writing its local lines to stdout, tagged with component.
func NewLogger(conf *core.Config, component string) *logsvc.RollbarLogger {
	var out zerolog.Logger
	if conf.Debug {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).Level(zerolog.DebugLevel)
	} else {
		out = zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	}
	out = out.With().Timestamp().Str("component", component).Logger()

	logger := logsvc.NewRollbarLogger(out, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func SetUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewRegistry registers the available channels; the first one is the default.
// Telegram is always registered: a missing bot token surfaces on delivery.
func NewRegistry(conf *core.Config) *notification.Registry {
	reg := notification.NewRegistry(notifysvc.NewTelegramChannel(conf.Telegram))
	if conf.Sendgrid.APIKey != "" {
		reg.Register(notifysvc.NewEmailChannel(conf))
	}
	if conf.Debug {
		reg.Register(notifysvc.NewConsoleChannel(os.Stdout))
	}
	return reg
}

func NewServices(conf *core.Config, db *sqlx.DB, registry *notification.Registry, logger core.Logger) *Services {
	accRepo := sqlxrepos.NewAccountRepository(db)
	notifSvc := notification.NewService(registry, sqlxrepos.NewDeliveryRepository(db), accRepo, logger)
	return &Services{
		AccountRepo:     accRepo,
		NotificationSvc: notifSvc,
		LinkSvc: link.NewService(
			db,
			sqlxrepos.NewLinkTokenRepository(db),
			accRepo,
			link.TTLFromMinutes(conf.Telegram.LinkTokenTTLMinutes),
			logger,
		),
		ReminderSvc: reminder.NewService(sqlxrepos.NewReminderRepository(db), notifSvc, logger),
	}
}

func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate, translator
}
