package ingest

import (
	"math"
	"time"

	"github.com/smartexpense/smartexpense/internal/model"
)

// unixEpochSerial is the spreadsheet serial of 1970-01-01 under the
// 1899-12-30 day-zero convention.
const unixEpochSerial = 25569

// SerialToDate converts a spreadsheet date serial to a YYYY-MM-DD string.
// The integer part counts days, the fraction encodes the time of day; the
// time is applied in UTC and then dropped.
func SerialToDate(serial float64) string {
	whole := math.Floor(serial)
	days := int64(whole) - unixEpochSerial

	secs := int64(math.Floor((serial - whole) * 86400))
	hours := secs / 3600
	minutes := (secs / 60) % 60
	seconds := secs % 60

	t := time.Unix(days*86400, 0).UTC().
		Add(time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds)*time.Second)
	return t.Format(model.DateLayout)
}
