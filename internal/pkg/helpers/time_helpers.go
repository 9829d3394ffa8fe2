package helpers

import (
	"strconv"
	"strings"
	"time"

	"github.com/dcruz/schoolgate/internal/pkg/logger"
)

// ParseDuration parses duration strings like "15m", "24h" or "7d", falling
// back to the given default on empty or malformed input. The "d" suffix is
// accepted as a shorthand for 24-hour days, which time.ParseDuration does not
// support.
func ParseDuration(s string, defaultDuration time.Duration) time.Duration {
	if s == "" {
		return defaultDuration
	}

	if strings.HasSuffix(s, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(s, "d")); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
		logger.Warn().Str("duration", s).Msg("Invalid day duration, using default")
		return defaultDuration
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		logger.Warn().Str("duration", s).Msg("Invalid duration, using default")
		return defaultDuration
	}
	return d
}
