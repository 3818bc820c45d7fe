package service

import (
	"context"
	"f2fit/gym-manager/internal/domain"
	"f2fit/gym-manager/internal/repository"
	"sort"
)

// PlanRevenue aggregates active gyms by tariff.
type PlanRevenue struct {
	PlanID   string `json:"planId"`
	PlanName string `json:"planName"`
	Count    int    `json:"count"`
	Revenue  int64  `json:"revenue"`
}

type PlatformReport struct {
	Period ReportPeriod `json:"period"`
	// Since is the first day counted in NewGyms and Growth, empty for PeriodAll.
	Since                domain.Date   `json:"since"`
	NewGyms              int           `json:"newGyms"`
	Growth               []ChartPoint  `json:"growth"`
	TotalGyms            int           `json:"totalGyms"`
	ActiveGyms           int           `json:"activeGyms"`
	DisabledGyms         int           `json:"disabledGyms"`
	ExpiredSubscriptions int           `json:"expiredSubscriptions"`
	TotalRevenue         int64         `json:"totalRevenue"`
	TotalTariffs         int           `json:"totalTariffs"`
	RevenueByPlan        []PlanRevenue `json:"revenueByPlan"`
}

type GymDashboard struct {
	TotalMembers         int            `json:"totalMembers"`
	ActiveMembers        int            `json:"activeMembers"`
	ActiveSubscriptions  int            `json:"activeSubscriptions"`
	ExpiringSoon         int            `json:"expiringSoon"`
	ExpiredSubscriptions int            `json:"expiredSubscriptions"`
	MonthlyRevenue       int64          `json:"monthlyRevenue"`
	TotalCoaches         int            `json:"totalCoaches"`
	TotalClasses         int            `json:"totalClasses"`
	EquipmentOutOfOrder  int            `json:"equipmentOutOfOrder"`
	UpcomingClasses      []domain.Class `json:"upcomingClasses"`
}

type ClientDashboard struct {
	Member          domain.Member            `json:"member"`
	GymName         string                   `json:"gymName"`
	State           domain.SubscriptionState `json:"subscriptionState"`
	Subscription    *SubscriptionView        `json:"subscription,omitempty"`
	Plan            *domain.Plan             `json:"plan,omitempty"`
	UpcomingClasses []domain.Class           `json:"upcomingClasses"`
}

type ReportService interface {
	PlatformReport(ctx context.Context, period ReportPeriod) (*PlatformReport, error)
	GymDashboard(ctx context.Context, gymID string) (*GymDashboard, error)
	RevenueChart(ctx context.Context, gymID string, tf RevenueTimeframe) (*RevenueChart, error)
	ClientDashboard(ctx context.Context, gymID, memberID string) (*ClientDashboard, error)
}

type reportService struct {
	repos   repository.Repositories
	tariffs TariffService
	clock   domain.Clock
}

func NewReportService(repos repository.Repositories, tariffs TariffService, clock domain.Clock) ReportService {
	return &reportService{repos: repos, tariffs: tariffs, clock: clock}
}

func (s *reportService) PlatformReport(ctx context.Context, period ReportPeriod) (*PlatformReport, error) {
	gyms, err := s.repos.Gyms.List(ctx)
	if err != nil {
		return nil, err
	}
	tariffs, err := s.tariffs.ListTariffs(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Plan, len(tariffs))
	for _, t := range tariffs {
		byID[t.ID] = t
	}

	now := s.clock.Now()
	today := domain.DateOf(now)
	report := &PlatformReport{
		Period:       period,
		Since:        periodStart(period, today),
		TotalGyms:    len(gyms),
		TotalTariffs: len(tariffs),
	}
	created := make([]domain.Date, 0, len(gyms))
	for _, g := range gyms {
		day := domain.DateOf(g.CreatedAt.In(now.Location()))
		created = append(created, day)
		if !day.Before(report.Since) && !day.After(today) {
			report.NewGyms++
		}
	}
	report.Growth = growthBuckets(period, today, created)

	perPlan := make(map[string]*PlanRevenue)
	for _, g := range gyms {
		if g.IsDisabled() {
			report.DisabledGyms++
			continue
		}
		report.ActiveGyms++
		if !g.SubscriptionEndDate.IsZero() && g.SubscriptionEndDate.Before(today) {
			report.ExpiredSubscriptions++
		}

		tariff, ok := byID[g.PlanID]
		if !ok {
			continue
		}
		report.TotalRevenue += tariff.Price
		pr, ok := perPlan[tariff.ID]
		if !ok {
			pr = &PlanRevenue{PlanID: tariff.ID, PlanName: tariff.Name}
			perPlan[tariff.ID] = pr
		}
		pr.Count++
		pr.Revenue += tariff.Price
	}

	report.RevenueByPlan = make([]PlanRevenue, 0, len(perPlan))
	for _, pr := range perPlan {
		report.RevenueByPlan = append(report.RevenueByPlan, *pr)
	}
	sort.Slice(report.RevenueByPlan, func(i, j int) bool {
		return report.RevenueByPlan[i].Revenue > report.RevenueByPlan[j].Revenue ||
			(report.RevenueByPlan[i].Revenue == report.RevenueByPlan[j].Revenue && report.RevenueByPlan[i].PlanID < report.RevenueByPlan[j].PlanID)
	})
	return report, nil
}

func (s *reportService) GymDashboard(ctx context.Context, gymID string) (*GymDashboard, error) {
	members, err := s.repos.Members.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	subs, err := s.repos.Subscriptions.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	coaches, err := s.repos.Coaches.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	classes, err := s.repos.Classes.List(ctx, gymID)
	if err != nil {
		return nil, err
	}
	equipment, err := s.repos.Equipment.List(ctx, gymID)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	d := &GymDashboard{
		TotalMembers:    len(members),
		TotalCoaches:    len(coaches),
		TotalClasses:    len(classes),
		UpcomingClasses: upcoming(classes, today, DefaultUpcomingLimit),
	}
	for _, m := range members {
		if m.Status == domain.MemberActive {
			d.ActiveMembers++
		}
	}
	for _, sub := range subs {
		switch domain.SubscriptionStatus(sub.EndDate, today) {
		case domain.SubscriptionActive:
			d.ActiveSubscriptions++
		case domain.SubscriptionExpiringSoon:
			d.ActiveSubscriptions++
			d.ExpiringSoon++
		case domain.SubscriptionExpired:
			d.ExpiredSubscriptions++
		}
		if sub.StartDate.SameMonth(today) {
			d.MonthlyRevenue += sub.Price
		}
	}
	for _, e := range equipment {
		if e.Status == domain.EquipmentMaintenance || e.Status == domain.EquipmentOutOfService {
			d.EquipmentOutOfOrder++
		}
	}
	return d, nil
}

func (s *reportService) ClientDashboard(ctx context.Context, gymID, memberID string) (*ClientDashboard, error) {
	member, err := s.repos.Members.Get(ctx, gymID, memberID)
	if err != nil {
		return nil, notFoundAs(err, ErrMemberNotFound)
	}
	subs, err := s.repos.Subscriptions.ListByMember(ctx, gymID, memberID)
	if err != nil {
		return nil, err
	}
	classes, err := s.repos.Classes.List(ctx, gymID)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	member.PasswordHash = ""
	d := &ClientDashboard{
		Member:          *member,
		State:           domain.SubscriptionNone,
		UpcomingClasses: upcoming(classes, today, DefaultUpcomingLimit),
	}
	if gym, err := s.repos.Gyms.Get(ctx, gymID); err == nil {
		d.GymName = gym.GymName
	}

	latest, ok := domain.LatestSubscription(subs, memberID)
	if !ok {
		return d, nil
	}
	view := newSubscriptionView(latest, today)
	d.Subscription = &view
	d.State = view.State
	if plan, err := s.repos.Plans.Get(ctx, gymID, latest.PlanID); err == nil {
		d.Plan = plan
	}
	return d, nil
}
