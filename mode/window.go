package mode

import "github.com/jlpinilla/MediaEdu/record"

// InWindow reports whether the clock time (hour, minute) falls inside the
// daily upload window. Both bounds are inclusive; a start past the end
// means the window wraps past midnight.
func InWindow(hour, minute int, w record.Window) bool {
	t := hour*60 + minute
	s := w.StartHour*60 + w.StartMinute
	e := w.EndHour*60 + w.EndMinute
	if s <= e {
		return s <= t && t <= e
	}
	return t >= s || t <= e
}
