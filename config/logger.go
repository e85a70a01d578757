// ABOUTME: Shared structured logger for the CLI, MCP server, and stores
// ABOUTME: Text output with full timestamps, level set from configuration
package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger configures Logger for the given level name. Logs go to stderr so
// they never mix with MCP traffic on stdout.
func InitLogger(level string) error {
	Logger.SetOutput(os.Stderr)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	Logger.SetLevel(parsed)
	return nil
}
