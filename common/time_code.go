package common

import (
	"fmt"
	"time"
)

// Centiseconds rounds a duration to the hundredths of a second used by ASS time codes.
func Centiseconds(d time.Duration) int64 {
	return int64(d.Round(10*time.Millisecond) / (10 * time.Millisecond))
}

// AssTimeCode formats a duration as h:mm:ss.cc, e.g. 0:02:14.53
func AssTimeCode(d time.Duration) string {
	centiseconds := Centiseconds(d)
	if centiseconds < 0 {
		centiseconds = 0
	}

	hours := centiseconds / 360000
	centiseconds -= hours * 360000
	minutes := centiseconds / 6000
	centiseconds -= minutes * 6000
	seconds := centiseconds / 100
	centiseconds -= seconds * 100

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centiseconds)
}

// SubRipTimeCode formats a duration as hh:mm:ss,mmm
func SubRipTimeCode(d time.Duration) string {
	milliseconds := d.Round(time.Millisecond).Milliseconds()
	if milliseconds < 0 {
		milliseconds = 0
	}

	hours := milliseconds / 3600000
	milliseconds -= hours * 3600000
	minutes := milliseconds / 60000
	milliseconds -= minutes * 60000
	seconds := milliseconds / 1000
	milliseconds -= seconds * 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
