package main

import (
	"os"

	"github.com/fsdevblog/urlkeeper/internal/app"
	"github.com/fsdevblog/urlkeeper/internal/bmeta"
	"github.com/fsdevblog/urlkeeper/internal/config"
	"go.uber.org/zap"
)

// Заполняются при сборке через -ldflags "-X main.buildVersion=...".
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	bmeta.Print(os.Stdout, buildVersion, buildDate, buildCommit)

	if err := run(); err != nil {
		panic(err)
	}
}

func run() error {
	appConf := config.MustLoadConfig()

	a := app.Must(app.New(*appConf))

	a.Logger.Info("Starting application",
		zap.String("addr", appConf.ServerAddress),
		zap.String("db", string(appConf.DBType)),
		zap.String("sessions", string(appConf.SessionStore)),
		zap.Bool("https", appConf.EnableHTTPS),
	)
	if err := a.Run(); err != nil {
		a.Logger.Error("application stopped with error", zap.Error(err))
		return err //nolint:wrapcheck
	}
	return nil
}
