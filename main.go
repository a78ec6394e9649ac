package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gitcluster/gitcluster/cli"
	"github.com/gitcluster/gitcluster/internal/errors"
	"github.com/gitcluster/gitcluster/options"
	"github.com/gitcluster/gitcluster/util"
)

// The main entrypoint for gitcluster.
func main() {
	opts, err := options.NewRunOptions()
	if err != nil {
		fallback := util.CreateLogEntry(os.Stderr, logrus.InfoLevel, "")
		checkForErrorsAndExit(fallback)(err)
	}

	defer errors.Recover(checkForErrorsAndExit(opts.Logger))

	app := cli.NewApp(opts)

	checkForErrorsAndExit(opts.Logger)(app.Run(os.Args))
}

// If there is an error, display it in the console and exit with a non-zero exit code. Otherwise, exit 0.
func checkForErrorsAndExit(logger *logrus.Entry) func(error) {
	return func(err error) {
		if err == nil {
			os.Exit(0)
		}

		logger.Error(err.Error())

		if logger.Logger.IsLevelEnabled(logrus.TraceLevel) {
			if errStack := errors.ErrorWithStackTrace(err); errStack != "" {
				logger.Trace(errStack)
			}
		}

		os.Exit(1)
	}
}
