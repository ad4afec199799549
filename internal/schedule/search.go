package schedule

import (
	"strconv"
	"strings"

	"appointment-scheduler/internal/model"
)

// Search keeps appointments whose title contains query (case-insensitive)
// or whose id contains it as digits. An empty query keeps everything.
func Search(appts []model.Appointment, query string) []model.Appointment {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return appts
	}
	out := make([]model.Appointment, 0, len(appts))
	for _, a := range appts {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strconv.FormatInt(a.ID, 10), q) {
			out = append(out, a)
		}
	}
	return out
}
