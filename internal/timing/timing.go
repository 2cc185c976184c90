package timing

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/kiwi/explorer/pkg/logger"
)

// Format renders d as hh:mm:ss.mmm.
func Format(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// Track logs the time elapsed since it was called once the returned func
// runs. Typical use is defer timing.Track("load", "key", key)().
func Track(operation string, keyvals ...any) func() {
	start := time.Now()
	return func() {
		elapsed := time.Since(start)
		logger.Debug("[Timing] "+operation, append(keyvals, "duration", Format(elapsed))...)
	}
}
