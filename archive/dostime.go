package archive

import "time"

const msdosEpoch = 1980

// msdosToTime converts packed MS-DOS date and time fields to a UTC time.
// Seconds are stored with two-second resolution.
func msdosToTime(date, tm uint16) time.Time {
	year := int(date>>9) + msdosEpoch
	month := time.Month((date >> 5) & 0x0f)
	day := int(date & 0x1f)
	hour := int(tm >> 11)
	minute := int((tm >> 5) & 0x3f)
	second := int(tm&0x1f) * 2
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}

// timeToMSDOS packs t into MS-DOS date and time fields. Times outside the
// representable range 1980..2107 are clamped.
func timeToMSDOS(t time.Time) (date, tm uint16) {
	if t.Year() < msdosEpoch {
		t = time.Date(msdosEpoch, 1, 1, 0, 0, 0, 0, time.UTC)
	} else if t.Year() > msdosEpoch+127 {
		t = time.Date(msdosEpoch+127, 12, 31, 23, 59, 58, 0, time.UTC)
	}
	date = uint16(t.Year()-msdosEpoch)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	tm = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, tm
}
