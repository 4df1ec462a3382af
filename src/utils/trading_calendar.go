package utils

import (
	"log"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar answers session questions for one exchange using
// scmhub/calendar, with a weekday/clock fallback if the MIC fails to load.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar maps a bare 6-digit A-share code to its exchange calendar.
// Shanghai lists 6xxxxx shares and 5xxxxx funds; Shenzhen lists 0xxxxx and
// 3xxxxx shares and 1xxxxx funds.
func GetCalendar(code string) *TradingCalendar {
	mic := "xshg"
	if len(code) > 0 {
		switch code[0] {
		case '6', '5', '9':
			mic = "xshg"
		case '0', '3', '1', '2':
			mic = "xshe"
		}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xshg")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s'. Using simple fallback (Mon-Fri A-share sessions, CST).", mic)
		loc, _ := time.LoadLocation("Asia/Shanghai")
		if loc == nil {
			loc = time.FixedZone("CST", 8*3600)
		}
		return &TradingCalendar{Fallback: true, Timezone: loc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		// 09:30-11:30 and 13:00-15:00 local time
		hm := t.Hour()*60 + t.Minute()
		morning := hm >= 9*60+30 && hm < 11*60+30
		afternoon := hm >= 13*60 && hm < 15*60
		return morning || afternoon
	}

	return tc.Calendar.IsOpen(t)
}
