package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f2fit/gym-manager/internal/domain"
)

func TestTariffs_SeededOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tariffs, err := e.tariffs.ListTariffs(ctx)
	require.NoError(t, err)
	require.Len(t, tariffs, 3)
	assert.Equal(t, []string{"starter", "pro", "premium"}, []string{tariffs[0].ID, tariffs[1].ID, tariffs[2].ID})
	assert.Equal(t, int64(25000), tariffs[1].Price)
	for _, tr := range tariffs {
		assert.True(t, tr.IsDefault)
		assert.Equal(t, domain.PlanActive, tr.Status)
	}

	require.NoError(t, e.tariffs.DeleteTariff(ctx, "pro"))
	tariffs, err = e.tariffs.ListTariffs(ctx)
	require.NoError(t, err)
	assert.Len(t, tariffs, 2, "deleting one does not reseed")
}

func TestTariffs_CRUD(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.tariffs.CreateTariff(ctx, PlanInput{Name: "Elite", Price: 90000, DurationDays: 90})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	all, err := e.tariffs.ListTariffs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	updated, err := e.tariffs.UpdateTariff(ctx, "starter", PlanInput{Name: "Starter+", Price: 12000, DurationDays: 30})
	require.NoError(t, err)
	assert.Equal(t, "Starter+", updated.Name)

	_, err = e.tariffs.SetTariffStatus(ctx, "starter", domain.PlanDisabled)
	require.NoError(t, err)
	active, err := e.tariffs.ActiveTariffs(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	_, err = e.tariffs.UpdateTariff(ctx, "missing", PlanInput{Name: "X", DurationDays: 1})
	assert.ErrorIs(t, err, ErrTariffNotFound)
	_, err = e.tariffs.CreateTariff(ctx, PlanInput{Name: "Free", DurationDays: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, e.tariffs.DeleteTariff(ctx, "missing"), ErrTariffNotFound)
}

func TestPlans_DefaultReadOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	starter := domain.DefaultPlanPrefix + "starter"

	_, err := e.plans.UpdatePlan(ctx, gym.ID, starter, PlanInput{Name: "Hacked", Price: 1, DurationDays: 1})
	assert.ErrorIs(t, err, ErrDefaultPlanReadOnly)
	assert.ErrorIs(t, e.plans.DeletePlan(ctx, gym.ID, starter), ErrDefaultPlanReadOnly)

	toggled, err := e.plans.TogglePlanStatus(ctx, gym.ID, starter)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanDisabled, toggled.Status)
	toggled, err = e.plans.TogglePlanStatus(ctx, gym.ID, starter)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanActive, toggled.Status)
}

func TestPlans_CustomLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")

	plan, err := e.plans.CreatePlan(ctx, gym.ID, PlanInput{Name: "Étudiant", Price: 7500, DurationDays: 30})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(plan.ID, domain.CustomPlanPrefix))
	assert.False(t, plan.IsDefault)

	updated, err := e.plans.UpdatePlan(ctx, gym.ID, plan.ID, PlanInput{Name: "Étudiant", Price: 8000, DurationDays: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(8000), updated.Price)

	require.NoError(t, e.plans.DeletePlan(ctx, gym.ID, plan.ID))
	assert.ErrorIs(t, e.plans.DeletePlan(ctx, gym.ID, plan.ID), ErrPlanNotFound)
}

func TestCoachesAndEquipment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")

	coach, err := e.coaches.CreateCoach(ctx, gym.ID, CoachInput{Name: "Ali Diop", Specialties: []string{" Yoga ", "", "Boxe"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Yoga", "Boxe"}, coach.Specialties)

	found, err := e.coaches.ListCoaches(ctx, gym.ID, "boxe")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = e.coaches.CreateCoach(ctx, gym.ID, CoachInput{Name: "Bad", Email: "nope"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, e.coaches.DeleteCoach(ctx, gym.ID, "missing"), ErrCoachNotFound)

	_, err = e.equipment.CreateEquipment(ctx, gym.ID, EquipmentInput{Name: "Tapis", Quantity: 3, Status: domain.EquipmentInService})
	require.NoError(t, err)
	bike, err := e.equipment.CreateEquipment(ctx, gym.ID, EquipmentInput{Name: "Vélo", Quantity: 1, Status: domain.EquipmentMaintenance})
	require.NoError(t, err)

	broken, err := e.equipment.ListEquipment(ctx, gym.ID, "", domain.EquipmentMaintenance)
	require.NoError(t, err)
	require.Len(t, broken, 1)
	assert.Equal(t, bike.ID, broken[0].ID)

	_, err = e.equipment.CreateEquipment(ctx, gym.ID, EquipmentInput{Name: "Banc", Status: "broken"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMessages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	member := e.createMember(t, gym.ID, "Awa", "awa@mail.sn", "")
	coach, err := e.coaches.CreateCoach(ctx, gym.ID, CoachInput{Name: "Ali"})
	require.NoError(t, err)

	contacts, err := e.messages.Contacts(ctx, gym.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, ContactMember, contacts[0].Type)
	assert.Equal(t, ContactCoach, contacts[1].Type)

	_, err = e.messages.Send(ctx, gym.ID, member.ID, gym.ID, "  Bonjour Awa ")
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	_, err = e.messages.Send(ctx, gym.ID, member.ID, member.ID, "Merci")
	require.NoError(t, err)

	conv, err := e.messages.Conversation(ctx, gym.ID, member.ID)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "Bonjour Awa", conv[0].Text)
	assert.Equal(t, member.ID, conv[1].SenderID)

	empty, err := e.messages.Conversation(ctx, gym.ID, coach.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = e.messages.Send(ctx, gym.ID, member.ID, gym.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = e.messages.Send(ctx, gym.ID, "stranger", gym.ID, "hi")
	assert.ErrorIs(t, err, ErrContactNotFound)
}
