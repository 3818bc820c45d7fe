package service

import (
	"context"
	"f2fit/gym-manager/internal/domain"
	"strconv"
	"time"
)

// ReportPeriod is the window the platform report counts new gyms in.
type ReportPeriod string

const (
	PeriodDay   ReportPeriod = "day"
	PeriodWeek  ReportPeriod = "week"
	PeriodMonth ReportPeriod = "month"
	PeriodYear  ReportPeriod = "year"
	PeriodAll   ReportPeriod = "all"
)

// ParseReportPeriod defaults to the current month.
func ParseReportPeriod(s string) (ReportPeriod, error) {
	switch p := ReportPeriod(s); p {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll:
		return p, nil
	default:
		return "", invalid("unknown report period %q", s)
	}
}

// RevenueTimeframe selects the buckets of a gym revenue chart.
type RevenueTimeframe string

const (
	TimeframeWeekly  RevenueTimeframe = "weekly"
	TimeframeMonthly RevenueTimeframe = "monthly"
	TimeframeYearly  RevenueTimeframe = "yearly"
)

// ParseRevenueTimeframe defaults to monthly.
func ParseRevenueTimeframe(s string) (RevenueTimeframe, error) {
	switch tf := RevenueTimeframe(s); tf {
	case "":
		return TimeframeMonthly, nil
	case TimeframeWeekly, TimeframeMonthly, TimeframeYearly:
		return tf, nil
	default:
		return "", invalid("unknown revenue timeframe %q", s)
	}
}

// ChartPoint is one labelled bucket of a chart.
type ChartPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// RevenueChart holds subscription revenue per bucket, oldest first.
type RevenueChart struct {
	Timeframe RevenueTimeframe `json:"timeframe"`
	Points    []ChartPoint     `json:"points"`
}

var (
	monthLabels   = [12]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Août", "Sep", "Oct", "Nov", "Déc"}
	weekdayLabels = [7]string{"lun.", "mar.", "mer.", "jeu.", "ven.", "sam.", "dim."}
)

// weekStart is the Sunday opening the week of d.
func weekStart(d domain.Date) domain.Date {
	return d.AddDays(-int(d.Time().Weekday()))
}

// periodStart returns the first day counted by p. It is zero for PeriodAll.
func periodStart(p ReportPeriod, today domain.Date) domain.Date {
	t := today.Time()
	switch p {
	case PeriodDay:
		return today
	case PeriodWeek:
		return weekStart(today)
	case PeriodMonth:
		return domain.NewDate(t.Year(), t.Month(), 1)
	case PeriodYear:
		return domain.NewDate(t.Year(), time.January, 1)
	default:
		return domain.Date{}
	}
}

// growthBuckets counts gym creations per bucket: months of the year, weeks of
// the month, weekdays of the week or day, and calendar years for PeriodAll.
// Days 29 to 31 fall in "Sem 4".
func growthBuckets(p ReportPeriod, today domain.Date, created []domain.Date) []ChartPoint {
	var points []ChartPoint
	var index func(domain.Date) int

	switch p {
	case PeriodYear:
		points = make([]ChartPoint, len(monthLabels))
		for i, name := range monthLabels {
			points[i].Name = name
		}
		index = func(d domain.Date) int { return int(d.Time().Month()) - 1 }
	case PeriodMonth:
		points = make([]ChartPoint, 4)
		for i := range points {
			points[i].Name = "Sem " + strconv.Itoa(i+1)
		}
		index = func(d domain.Date) int { return min((d.Time().Day()-1)/7, 3) }
	case PeriodAll:
		first := today.Time().Year()
		for _, d := range created {
			first = min(first, d.Time().Year())
		}
		for y := first; y <= today.Time().Year(); y++ {
			points = append(points, ChartPoint{Name: strconv.Itoa(y)})
		}
		index = func(d domain.Date) int { return d.Time().Year() - first }
	default:
		points = make([]ChartPoint, len(weekdayLabels))
		for i, name := range weekdayLabels {
			points[i].Name = name
		}
		index = func(d domain.Date) int { return (int(d.Time().Weekday()) + 6) % 7 }
	}

	since := periodStart(p, today)
	for _, d := range created {
		if d.Before(since) || d.After(today) {
			continue
		}
		if i := index(d); i >= 0 && i < len(points) {
			points[i].Value++
		}
	}
	return points
}

// revenueBuckets sums subscription prices by start date: the last four weeks,
// six months or three years, ending with the current one.
func revenueBuckets(tf RevenueTimeframe, today domain.Date, subs []domain.Subscription) []ChartPoint {
	type bucket struct {
		name     string
		from, to domain.Date
	}
	var buckets []bucket
	t := today.Time()

	switch tf {
	case TimeframeWeekly:
		current := weekStart(today)
		for i := 3; i >= 0; i-- {
			from := current.AddDays(-7 * i)
			buckets = append(buckets, bucket{name: "S-" + strconv.Itoa(4-i), from: from, to: from.AddDays(6)})
		}
	case TimeframeYearly:
		for i := 2; i >= 0; i-- {
			y := t.Year() - i
			buckets = append(buckets, bucket{name: strconv.Itoa(y), from: domain.NewDate(y, time.January, 1), to: domain.NewDate(y, time.December, 31)})
		}
	default:
		first := domain.NewDate(t.Year(), t.Month(), 1)
		for i := 5; i >= 0; i-- {
			from := first.AddMonths(-i)
			buckets = append(buckets, bucket{name: monthLabels[from.Time().Month()-1], from: from, to: from.AddMonths(1).AddDays(-1)})
		}
	}

	points := make([]ChartPoint, len(buckets))
	for i, b := range buckets {
		points[i].Name = b.name
		for _, sub := range subs {
			if !sub.StartDate.Before(b.from) && !sub.StartDate.After(b.to) {
				points[i].Value += sub.Price
			}
		}
	}
	return points
}

func (s *reportService) RevenueChart(ctx context.Context, gymID string, tf RevenueTimeframe) (*RevenueChart, error) {
	subs, err := s.repos.Subscriptions.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	return &RevenueChart{Timeframe: tf, Points: revenueBuckets(tf, domain.Today(s.clock), subs)}, nil
}
