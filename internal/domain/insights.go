package domain

import "time"

// HourBucket is one hour-of-day histogram slot. The dashboard always
// receives all 24 slots, zero-filled.
type HourBucket struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DayBucket is one day-of-week histogram slot, Sunday first.
type DayBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CalendarDay is one cell of the reading heatmap. Day is an ISO date
// string (YYYY-MM-DD); the trailing-year window is contiguous, so sparse
// histories still produce a full calendar.
type CalendarDay struct {
	Day   string `json:"day"`
	Value int    `json:"value"`
}

// RecentActivity is a dashboard row for one recently-updated transaction.
type RecentActivity struct {
	ID            string    `json:"id"`
	BookID        string    `json:"bookId"`
	Title         string    `json:"title"`
	Author        *string   `json:"author"`
	Date          time.Time `json:"date"`
	MessageCount  int       `json:"messageCount"`
	TransactionID string    `json:"transactionId"`
}

// Recommendation is one scored catalog suggestion. Recommendations are
// recomputed per request and never persisted.
type Recommendation struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Author         *string `json:"author"`
	CoverURL       *string `json:"coverUrl"`
	RelevanceScore int     `json:"relevanceScore"`
}

// ActivityStats is the time-bucketed view of a user's transaction log.
type ActivityStats struct {
	ReadingHoursData   []HourBucket     `json:"readingHoursData"`
	ReadingDaysData    []DayBucket      `json:"readingDaysData"`
	CalendarData       []CalendarDay    `json:"calendarData"`
	FirstReadDate      *time.Time       `json:"firstReadDate"`
	LastReadDate       *time.Time       `json:"lastReadDate"`
	DaysSinceFirstRead int              `json:"daysSinceFirstRead"`
	DaysSinceLastRead  *int             `json:"daysSinceLastRead"`
	CurrentStreakDays  int              `json:"currentStreakDays"`
	LongestStreakDays  int              `json:"longestStreakDays"`
	RecentActivity     []RecentActivity `json:"recentActivity"`
}

// ReadingInsights is the complete dashboard payload: activity statistics
// merged with the corpus-driven recommendation results.
type ReadingInsights struct {
	TotalBooks             int     `json:"totalBooks"`
	TotalBooksInLibrary    int     `json:"totalBooksInLibrary"`
	TotalAuthors           int     `json:"totalAuthors"`
	TotalMessages          int     `json:"totalMessages"`
	UserMessageCount       int     `json:"userMessageCount"`
	BotMessageCount        int     `json:"botMessageCount"`
	AverageMessagesPerBook float64 `json:"averageMessagesPerBook"`
	BooksWithMessages      int     `json:"booksWithMessages"`

	ActivityStats

	TopSubjects     []string         `json:"topSubjects"`
	Recommendations []Recommendation `json:"recommendations"`
}
