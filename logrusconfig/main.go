package logrusconfig

import (
	"io"
	"os"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var loglevel *int

// InitParam registers the --loglevel flag. Without it GetLogger uses the level
// it is given.
func InitParam(fs *pflag.FlagSet, level logrus.Level) {
	loglevel = fs.Int("loglevel", int(level), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
}

func GetLogger(level logrus.Level) *logrus.Entry {
	logrus.ErrorKey = "$error"
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if loglevel == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	customFormatter.PrefixPadding = 20
	customFormatter.SpacePadding = 50
	logger.SetFormatter(customFormatter)
	return logrus.NewEntry(logger)
}

// Discard returns a logger that drops everything, for components created
// without one.
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}
