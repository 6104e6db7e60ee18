package insight

import (
	"sort"
	"time"

	"github.com/readmateapp/readmate-server/internal/domain"
)

// Sunday-first, matching the dashboard's week layout.
var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

const (
	recentActivityCount = 5
	calendarDateLayout  = "2006-01-02"
)

// AggregateActivity reduces a user's transaction log into time-bucketed
// statistics. The histograms are always fully populated (24 hour slots,
// 7 day slots) and the calendar covers every day of the trailing year
// contiguously, zero-filled, in ascending date order. now is injected so
// window math stays deterministic under test.
func AggregateActivity(transactions []*domain.Transaction, now time.Time) domain.ActivityStats {
	stats := domain.ActivityStats{
		ReadingHoursData: make([]domain.HourBucket, 24),
		ReadingDaysData:  make([]domain.DayBucket, 7),
		RecentActivity:   []domain.RecentActivity{},
	}
	for hour := range stats.ReadingHoursData {
		stats.ReadingHoursData[hour].Hour = hour
	}
	for day := range stats.ReadingDaysData {
		stats.ReadingDaysData[day].Name = weekdayNames[day]
	}

	windowStart := now.AddDate(-1, 0, 0)
	dailyCounts := make(map[string]int)

	var first, last time.Time
	for _, t := range transactions {
		created := t.CreatedAt

		stats.ReadingHoursData[created.Hour()].Count++
		stats.ReadingDaysData[int(created.Weekday())].Count++

		if !created.Before(windowStart) && !created.After(now) {
			dailyCounts[created.Format(calendarDateLayout)]++
		}

		if first.IsZero() || created.Before(first) {
			first = created
		}
		if last.IsZero() || created.After(last) {
			last = created
		}
	}

	stats.CalendarData = buildCalendar(windowStart, now, dailyCounts)

	if !first.IsZero() {
		firstCopy, lastCopy := first, last
		stats.FirstReadDate = &firstCopy
		stats.LastReadDate = &lastCopy
		stats.DaysSinceFirstRead = int(now.Sub(first) / (24 * time.Hour))
		daysSinceLast := int(now.Sub(last) / (24 * time.Hour))
		stats.DaysSinceLastRead = &daysSinceLast
	}

	stats.CurrentStreakDays, stats.LongestStreakDays = streaks(dailyCounts, windowStart, now)
	stats.RecentActivity = recentActivity(transactions)

	return stats
}

// buildCalendar walks the window day by day so the heatmap never has
// gaps, however sparse the history.
func buildCalendar(windowStart, now time.Time, dailyCounts map[string]int) []domain.CalendarDay {
	var calendar []domain.CalendarDay
	for day := windowStart; !day.After(now); day = day.AddDate(0, 0, 1) {
		key := day.Format(calendarDateLayout)
		calendar = append(calendar, domain.CalendarDay{
			Day:   key,
			Value: dailyCounts[key],
		})
	}
	return calendar
}

// streaks derives the current and longest runs of consecutive active
// days inside the calendar window. The current streak survives an
// inactive today, so a streak is not "broken" before the day is over.
func streaks(dailyCounts map[string]int, windowStart, now time.Time) (current, longest int) {
	run := 0
	for day := windowStart; !day.After(now); day = day.AddDate(0, 0, 1) {
		if dailyCounts[day.Format(calendarDateLayout)] > 0 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	cursor := now
	if dailyCounts[cursor.Format(calendarDateLayout)] == 0 {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for !cursor.Before(windowStart) && dailyCounts[cursor.Format(calendarDateLayout)] > 0 {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return current, longest
}

// recentActivity returns dashboard rows for the five most recently
// updated transactions.
func recentActivity(transactions []*domain.Transaction) []domain.RecentActivity {
	ordered := make([]*domain.Transaction, len(transactions))
	copy(ordered, transactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
	})
	if len(ordered) > recentActivityCount {
		ordered = ordered[:recentActivityCount]
	}

	rows := make([]domain.RecentActivity, 0, len(ordered))
	for _, t := range ordered {
		rows = append(rows, domain.RecentActivity{
			ID:            t.ID,
			BookID:        t.BookID,
			Title:         t.BookTitle,
			Author:        t.BookAuthor,
			Date:          t.UpdatedAt,
			MessageCount:  len(t.Messages),
			TransactionID: t.ID,
		})
	}
	return rows
}
