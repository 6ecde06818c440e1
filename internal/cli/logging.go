package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ccollicutt/chatlens/pkg/config"
)

// setupLogging points the global logger at a console writer on w and sets
// the global level. An empty level falls back to CHATLENS_LOG_LEVEL and
// then to the default.
func setupLogging(w io.Writer, level string) error {
	if level == "" {
		level = os.Getenv(config.EnvLogLevel)
	}
	if level == "" {
		level = config.DefaultLogLevel
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()

	return nil
}
