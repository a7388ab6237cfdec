package services

import "time"

var istZone = time.FixedZone("IST", 5*60*60+30*60)

// FormatIST renders a backend timestamp as dd/mm/yyyy HH:MM:SS in India time.
// Unparseable input is returned as is.
func FormatIST(ts string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05.999999999-07", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.In(istZone).Format("02/01/2006 15:04:05")
		}
	}
	return ts
}
