package health

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule probes the upstream API once a minute.
const DefaultSchedule = "@every 1m"

var scheduleParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// ParseSchedule parses a five-field UTC cron expression or an @every/@hourly
// style descriptor.
func ParseSchedule(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("health: schedule is required")
	}
	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("health: schedule must be UTC-only (timezone prefixes are not allowed)")
	}
	schedule, err := scheduleParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("health: invalid schedule %q: %w", clean, err)
	}
	return schedule, nil
}
