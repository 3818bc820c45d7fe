package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f2fit/gym-manager/internal/domain"
)

func TestPlatformReport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	iron := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	_, err := e.gyms.CreateGym(ctx, GymInput{GymName: "Pro Gym", AdminName: "A", Email: "pro@gym.sn", Password: "secret123", PlanID: "pro"})
	require.NoError(t, err)
	off, err := e.gyms.CreateGym(ctx, GymInput{GymName: "Off Gym", AdminName: "B", Email: "off@gym.sn", Password: "secret123", PlanID: "premium"})
	require.NoError(t, err)
	_, err = e.gyms.SetGymStatus(ctx, off.ID, domain.GymDisabled)
	require.NoError(t, err)
	_, err = e.gyms.UpdateGym(ctx, iron.ID, GymInput{GymName: "Iron Dakar", AdminName: "Admin", Email: "iron@dakar.sn", SubscriptionEndDate: mustDate(t, "2025-10-01")})
	require.NoError(t, err)

	report, err := e.reports.PlatformReport(ctx, PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, 3, report.NewGyms)
	assert.Equal(t, 3, report.TotalGyms)
	assert.Equal(t, 2, report.ActiveGyms)
	assert.Equal(t, 1, report.DisabledGyms)
	assert.Equal(t, 1, report.ExpiredSubscriptions)
	assert.Equal(t, int64(35000), report.TotalRevenue)
	assert.Equal(t, 3, report.TotalTariffs)
	require.Len(t, report.RevenueByPlan, 2)
	assert.Equal(t, "pro", report.RevenueByPlan[0].PlanID)
	assert.Equal(t, "starter", report.RevenueByPlan[1].PlanID)
}

func TestPlatformReport_Periods(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, g := range []struct{ day, name string }{
		{"2024-06-10", "Ancienne Salle"},
		{"2025-03-05", "Salle Mars"},
		{"2025-10-02", "Salle Debut Octobre"},
		{"2025-10-19", "Salle Dimanche"},
		{"2025-10-23", "Salle Jeudi"},
	} {
		e.clock.Set(g.day)
		e.createGym(t, g.name, strings.ReplaceAll(strings.ToLower(g.name), " ", ".")+"@gym.sn")
	}
	e.clock.Set("2025-10-23")

	values := func(points []ChartPoint) map[string]int64 {
		out := make(map[string]int64, len(points))
		for _, p := range points {
			if p.Value != 0 {
				out[p.Name] = p.Value
			}
		}
		return out
	}

	tests := []struct {
		period  ReportPeriod
		since   string
		newGyms int
		labels  int
		growth  map[string]int64
	}{
		{PeriodDay, "2025-10-23", 1, 7, map[string]int64{"jeu.": 1}},
		{PeriodWeek, "2025-10-19", 2, 7, map[string]int64{"dim.": 1, "jeu.": 1}},
		{PeriodMonth, "2025-10-01", 3, 4, map[string]int64{"Sem 1": 1, "Sem 3": 1, "Sem 4": 1}},
		{PeriodYear, "2025-01-01", 4, 12, map[string]int64{"Mar": 1, "Oct": 3}},
		{PeriodAll, "", 5, 2, map[string]int64{"2024": 1, "2025": 4}},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			report, err := e.reports.PlatformReport(ctx, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.period, report.Period)
			assert.Equal(t, tt.since, report.Since.String())
			assert.Equal(t, tt.newGyms, report.NewGyms)
			assert.Len(t, report.Growth, tt.labels)
			assert.Equal(t, tt.growth, values(report.Growth))
			assert.Equal(t, 5, report.ActiveGyms)
			assert.Equal(t, 2, report.ExpiredSubscriptions)
		})
	}

	report, err := e.reports.PlatformReport(ctx, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, "lun.", report.Growth[0].Name)
	assert.Equal(t, "dim.", report.Growth[6].Name)
}

func TestParseReportPeriod(t *testing.T) {
	p, err := ParseReportPeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonth, p)

	p, err = ParseReportPeriod("year")
	require.NoError(t, err)
	assert.Equal(t, PeriodYear, p)

	_, err = ParseReportPeriod("decade")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseRevenueTimeframe("daily")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRevenueChart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")

	for _, s := range []struct{ email, plan, start string }{
		{"awa@mail.sn", "starter", "2025-10-21"},
		{"fatou@mail.sn", "pro", "2025-10-14"},
		{"moussa@mail.sn", "premium", "2025-08-05"},
		{"ali@mail.sn", "starter", "2024-12-31"},
	} {
		m := e.createMember(t, gym.ID, s.email, s.email, "")
		_, err := e.subscriptions.CreateSubscription(ctx, gym.ID, m.ID, domain.DefaultPlanPrefix+s.plan, mustDate(t, s.start))
		require.NoError(t, err)
	}

	tests := []struct {
		tf   RevenueTimeframe
		want []ChartPoint
	}{
		{TimeframeWeekly, []ChartPoint{{"S-1", 0}, {"S-2", 0}, {"S-3", 25000}, {"S-4", 10000}}},
		{TimeframeMonthly, []ChartPoint{{"Mai", 0}, {"Juin", 0}, {"Juil", 0}, {"Août", 50000}, {"Sep", 0}, {"Oct", 35000}}},
		{TimeframeYearly, []ChartPoint{{"2023", 0}, {"2024", 10000}, {"2025", 85000}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			chart, err := e.reports.RevenueChart(ctx, gym.ID, tt.tf)
			require.NoError(t, err)
			assert.Equal(t, tt.tf, chart.Timeframe)
			assert.Equal(t, tt.want, chart.Points)
		})
	}
}

func TestGymDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")

	e.createMember(t, gym.ID, "Awa", "awa@mail.sn", domain.DefaultPlanPrefix+"starter")
	fatou := e.createMember(t, gym.ID, "Fatou", "fatou@mail.sn", "")
	_, err := e.subscriptions.CreateSubscription(ctx, gym.ID, fatou.ID, domain.DefaultPlanPrefix+"pro", mustDate(t, "2025-09-01"))
	require.NoError(t, err)
	moussa := e.createMember(t, gym.ID, "Moussa", "moussa@mail.sn", "")
	_, err = e.subscriptions.CreateSubscription(ctx, gym.ID, moussa.ID, domain.DefaultPlanPrefix+"premium", mustDate(t, "2025-09-26"))
	require.NoError(t, err)
	_, err = e.members.UpdateMember(ctx, gym.ID, moussa.ID, MemberInput{Name: "Moussa", Email: "moussa@mail.sn", Status: domain.MemberInactive})
	require.NoError(t, err)

	_, err = e.coaches.CreateCoach(ctx, gym.ID, CoachInput{Name: "Ali"})
	require.NoError(t, err)
	newClass(t, e, gym.ID, "Yoga", "2025-10-20", "09:00", 10)
	newClass(t, e, gym.ID, "Boxe", "2025-10-24", "18:00", 10)
	for _, st := range []domain.EquipmentStatus{domain.EquipmentInService, domain.EquipmentMaintenance, domain.EquipmentOutOfService} {
		_, err = e.equipment.CreateEquipment(ctx, gym.ID, EquipmentInput{Name: string(st), Quantity: 1, Status: st})
		require.NoError(t, err)
	}

	d, err := e.reports.GymDashboard(ctx, gym.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalMembers)
	assert.Equal(t, 2, d.ActiveMembers)
	// awa active, moussa ends 2025-10-26 (expiring soon), fatou ended 2025-10-01.
	assert.Equal(t, 2, d.ActiveSubscriptions)
	assert.Equal(t, 1, d.ExpiringSoon)
	assert.Equal(t, 1, d.ExpiredSubscriptions)
	assert.Equal(t, int64(10000), d.MonthlyRevenue)
	assert.Equal(t, 1, d.TotalCoaches)
	assert.Equal(t, 2, d.TotalClasses)
	assert.Equal(t, 2, d.EquipmentOutOfOrder)
	require.Len(t, d.UpcomingClasses, 1)
	assert.Equal(t, "Boxe", d.UpcomingClasses[0].Name)
}

func TestClientDashboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	awa := e.createMember(t, gym.ID, "Awa", "awa@mail.sn", domain.DefaultPlanPrefix+"pro")
	fatou := e.createMember(t, gym.ID, "Fatou", "fatou@mail.sn", "")

	d, err := e.reports.ClientDashboard(ctx, gym.ID, awa.ID)
	require.NoError(t, err)
	assert.Equal(t, "Iron Dakar", d.GymName)
	assert.Equal(t, domain.SubscriptionActive, d.State)
	require.NotNil(t, d.Plan)
	assert.Equal(t, "Pro", d.Plan.Name)
	assert.Equal(t, 30, d.Subscription.DaysLeft)
	assert.Empty(t, d.Member.PasswordHash)

	d, err = e.reports.ClientDashboard(ctx, gym.ID, fatou.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionNone, d.State)
	assert.Nil(t, d.Subscription)

	_, err = e.reports.ClientDashboard(ctx, gym.ID, "missing")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
