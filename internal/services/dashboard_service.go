// Package services – DashboardService
//
// This file implements DashboardService, which computes the admin dashboard:
// global scalar counters, daily series over a date range and the latest
// tickets. Series are zero-filled so every calendar day in range has a
// value, and days are bucketed in Go in the service's Location.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

const (
	// DefaultDashboardDays is how far before the end the range starts when
	// no start date is given.
	DefaultDashboardDays = 7
	// MaxDashboardDays bounds the number of calendar days in one range.
	MaxDashboardDays = 366
	// RecentTicketsLimit bounds the recentTickets list.
	RecentTicketsLimit = 10

	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "Jan 02"
	recentLayout   = "2006-01-02 15:04:05"
)

// DashboardService aggregates counters for admins.
type DashboardService struct {
	DB *gorm.DB
	// Location defines calendar days; defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewDashboardService constructs a DashboardService bucketing days in UTC.
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{DB: db, Location: time.UTC, Now: time.Now}
}

// Range bounds the series. Nil fields take the defaults.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// DashboardCounters are the scalar stats. Only NewUsers depends on the
// range; ConversationsToday uses the current day.
type DashboardCounters struct {
	TotalUsers         int64 `json:"totalUsers"`
	NewUsers           int64 `json:"newUsers"`
	TotalTickets       int64 `json:"totalTickets"`
	RepliedTickets     int64 `json:"repliedTickets"`
	UnrepliedTickets   int64 `json:"unrepliedTickets"`
	TotalFeedback      int64 `json:"totalFeedback"`
	PositiveFeedback   int64 `json:"positiveFeedback"`
	NegativeFeedback   int64 `json:"negativeFeedback"`
	AdminComments      int64 `json:"adminComments"`
	TotalConversations int64 `json:"totalConversations"`
	ConversationsToday int64 `json:"conversationsToday"`
}

// PolarSeries is a pair of daily positive/negative counts.
type PolarSeries struct {
	Labels   []string `json:"labels"`
	Positive []int64  `json:"positive"`
	Negative []int64  `json:"negative"`
}

// Series is a single daily count.
type Series struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// RecentTicket is a row of the recent tickets table.
type RecentTicket struct {
	ID              uint    `json:"id"`
	UserName        string  `json:"user_name"`
	Question        string  `json:"question"`
	Status          string  `json:"status"`
	Evaluation      *string `json:"evaluation"`
	HasAdminComment bool    `json:"has_admin_comment"`
	CreatedAt       string  `json:"created_at"`
}

// DashboardStats is the full dashboard payload.
type DashboardStats struct {
	Stats                     DashboardCounters `json:"stats"`
	FeedbackChartData         PolarSeries       `json:"feedbackChartData"`
	ConversationChartData     Series            `json:"conversationChartData"`
	TicketEvaluationChartData PolarSeries       `json:"ticketEvaluationChartData"`
	RecentTickets             []RecentTicket    `json:"recentTickets"`
}

func (s *DashboardService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.UTC
}

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.loc())
	}
	return time.Now().In(s.loc())
}

// Window resolves r against the current time: end defaults to now, start
// to seven days before the end, and both snap outward to whole days. An end
// before the start yields ErrInvalidRange; a range longer than
// MaxDashboardDays days yields ErrRangeTooLong.
func (s *DashboardService) Window(r Range) (repo.Window, error) {
	end := s.now()
	if r.End != nil {
		end = r.End.In(s.loc())
	}
	start := end.AddDate(0, 0, -DefaultDashboardDays)
	if r.Start != nil {
		start = r.Start.In(s.loc())
	}

	w := repo.Window{Start: startOfDay(start), End: endOfDay(end)}
	if w.End.Before(w.Start) {
		return repo.Window{}, ErrInvalidRange
	}
	if w.Start.AddDate(0, 0, MaxDashboardDays).Before(w.End) {
		return repo.Window{}, ErrRangeTooLong
	}
	return w, nil
}

// Stats computes the dashboard for r.
func (s *DashboardService) Stats(ctx context.Context, r Range) (*DashboardStats, error) {
	w, err := s.Window(r)
	if err != nil {
		return nil, err
	}

	tr := otel.Tracer("services/DashboardService")
	ctx, span := tr.Start(ctx, "Stats",
		trace.WithAttributes(
			attribute.String("range.start", w.Start.Format(dayKeyLayout)),
			attribute.String("range.end", w.End.Format(dayKeyLayout)),
		),
	)
	defer span.End()

	counters, err := s.counters(ctx, w)
	if err != nil {
		return nil, err
	}

	positive, err := s.dayCounts(ctx, &domain.Ticket{}, w, repo.Where("evaluation = ?", domain.EvaluationLike))
	if err != nil {
		return nil, err
	}
	negative, err := s.dayCounts(ctx, &domain.Ticket{}, w, repo.Where("evaluation = ?", domain.EvaluationDislike))
	if err != nil {
		return nil, err
	}
	convs, err := s.dayCounts(ctx, &domain.Conversation{}, w)
	if err != nil {
		return nil, err
	}

	convLabels, convData := DailySeries(w.Start, w.End, convs)

	recent, err := s.recent(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Stats:                     counters,
		FeedbackChartData:         polarSeries(w, positive, negative),
		ConversationChartData:     Series{Labels: convLabels, Data: convData},
		TicketEvaluationChartData: polarSeries(w, positive, negative),
		RecentTickets:             recent,
	}, nil
}

func (s *DashboardService) counters(ctx context.Context, w repo.Window) (DashboardCounters, error) {
	var c DashboardCounters
	today := s.now()
	commented := repo.Where("commentaire_admin IS NOT NULL AND commentaire_admin <> ''")

	steps := []struct {
		dst *int64
		run func() (int64, error)
	}{
		{&c.TotalUsers, func() (int64, error) { return repo.Count(ctx, s.DB, &domain.User{}) }},
		{&c.NewUsers, func() (int64, error) { return repo.CountCreatedIn(ctx, s.DB, &domain.User{}, w) }},
		{&c.TotalTickets, func() (int64, error) { return repo.Count(ctx, s.DB, &domain.Ticket{}) }},
		{&c.RepliedTickets, func() (int64, error) { return repo.Count(ctx, s.DB, &domain.Ticket{}, commented) }},
		{&c.TotalFeedback, func() (int64, error) {
			return repo.Count(ctx, s.DB, &domain.Ticket{}, repo.Where("evaluation IS NOT NULL"))
		}},
		{&c.PositiveFeedback, func() (int64, error) {
			return repo.Count(ctx, s.DB, &domain.Ticket{}, repo.Where("evaluation = ?", domain.EvaluationLike))
		}},
		{&c.NegativeFeedback, func() (int64, error) {
			return repo.Count(ctx, s.DB, &domain.Ticket{}, repo.Where("evaluation = ?", domain.EvaluationDislike))
		}},
		{&c.TotalConversations, func() (int64, error) { return repo.Count(ctx, s.DB, &domain.Conversation{}) }},
		{&c.ConversationsToday, func() (int64, error) {
			return repo.CountCreatedIn(ctx, s.DB, &domain.Conversation{}, repo.Window{Start: startOfDay(today), End: endOfDay(today)})
		}},
	}
	for _, st := range steps {
		n, err := st.run()
		if err != nil {
			return DashboardCounters{}, err
		}
		*st.dst = n
	}

	c.UnrepliedTickets = c.TotalTickets - c.RepliedTickets
	c.AdminComments = c.RepliedTickets
	return c, nil
}

// dayCounts buckets the creation times of model rows in w by calendar day.
func (s *DashboardService) dayCounts(ctx context.Context, model any, w repo.Window, conds ...repo.Cond) (map[string]int64, error) {
	times, err := repo.CreatedTimes(ctx, s.DB, model, w, conds...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(times))
	for _, t := range times {
		out[t.In(s.loc()).Format(dayKeyLayout)]++
	}
	return out, nil
}

func (s *DashboardService) recent(ctx context.Context) ([]RecentTicket, error) {
	tickets, err := repo.RecentTickets(ctx, s.DB, RecentTicketsLimit)
	if err != nil {
		return nil, err
	}
	out := make([]RecentTicket, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		status := t.Status
		if status == "" {
			status = domain.TicketOpen
		}
		var name string
		if t.User != nil {
			name = t.User.Name
		}
		out = append(out, RecentTicket{
			ID:              t.ID,
			UserName:        name,
			Question:        t.Question,
			Status:          status,
			Evaluation:      t.Evaluation,
			HasAdminComment: t.HasAdminComment(),
			CreatedAt:       t.CreatedAt.In(s.loc()).Format(recentLayout),
		})
	}
	return out, nil
}

// polarSeries builds a fresh positive/negative series over w. Both
// evaluation charts count tickets by creation day and evaluation, but each
// gets its own slices.
func polarSeries(w repo.Window, positive, negative map[string]int64) PolarSeries {
	labels, pos := DailySeries(w.Start, w.End, positive)
	_, neg := DailySeries(w.Start, w.End, negative)
	return PolarSeries{Labels: labels, Positive: pos, Negative: neg}
}

// DailySeries walks every calendar day from start to end inclusive and
// returns "Jan 02" labels with the matching counts, keyed "2006-01-02",
// zero where absent. Days follow start's location.
func DailySeries(start, end time.Time, counts map[string]int64) (labels []string, data []int64) {
	end = end.In(start.Location())
	labels = []string{}
	data = []int64{}
	for d := startOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		labels = append(labels, d.Format(dayLabelLayout))
		data = append(data, counts[d.Format(dayKeyLayout)])
	}
	return labels, data
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
