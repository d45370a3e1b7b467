package voice

import (
	"log/slog"
	"math"
)

// DurationSeconds derives the call length from provider timestamps in unix
// millis. A missing timestamp yields 0. Inconsistent timestamps (end before
// start) are logged and also yield 0.
func DurationSeconds(startMs, endMs *int64, logger *slog.Logger) int {
	if startMs == nil || endMs == nil {
		return 0
	}
	secs := int(math.Round(float64(*endMs-*startMs) / 1000))
	if secs < 0 {
		if logger != nil {
			logger.Warn("provider timestamps out of order, using zero duration",
				"start_ms", *startMs,
				"end_ms", *endMs,
			)
		}
		return 0
	}
	return secs
}
