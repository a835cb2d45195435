package indicator

import (
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func dailyDate(year, yday int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, yday)
}

// constantDaily builds a daily series over [from, to] with value v.
func constantDaily(variable string, from, to int, v float64) domain.Series {
	s := domain.Series{Variable: variable, Unit: domain.Daily}
	for y := from; y <= to; y++ {
		for d := 0; d < daysInYear(y); d++ {
			s.Points = append(s.Points, domain.Point{Time: dailyDate(y, d), Value: v})
		}
	}
	return s
}

func yearly(variable string, start int, values ...float64) domain.Series {
	s := domain.Series{Variable: variable, Unit: domain.Yearly}
	for i, v := range values {
		s.Points = append(s.Points, domain.Point{Time: domain.YearStart(start + i), Value: v})
	}
	return s
}
