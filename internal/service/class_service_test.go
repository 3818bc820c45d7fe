package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f2fit/gym-manager/internal/domain"
)

func newClass(t *testing.T, e *env, gymID, name, day, at string, capacity int) *domain.Class {
	t.Helper()
	c, err := e.classes.CreateClass(context.Background(), gymID, ClassInput{
		Name:     name,
		Type:     domain.ClassGroup,
		Date:     mustDate(t, day),
		Time:     at,
		Capacity: capacity,
	})
	require.NoError(t, err)
	return c
}

func TestBook_Full(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	class := newClass(t, e, gym.ID, "Yoga", "2025-10-24", "09:00", 2)

	for i := 1; i <= 2; i++ {
		booked, err := e.classes.Book(ctx, gym.ID, class.ID)
		require.NoError(t, err)
		assert.Equal(t, i, booked.Enrolled)
	}

	_, err := e.classes.Book(ctx, gym.ID, class.ID)
	assert.ErrorIs(t, err, ErrClassFull)

	stored, err := e.classes.GetClass(ctx, gym.ID, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Enrolled)

	_, err = e.classes.Book(ctx, gym.ID, "missing")
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestBook_ConcurrentNeverOverbooks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	class := newClass(t, e, gym.ID, "Boxe", "2025-10-24", "18:30", 5)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		full      int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.classes.Book(ctx, gym.ID, class.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case assert.ErrorIs(t, err, ErrClassFull):
				full++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, confirmed)
	assert.Equal(t, 15, full)
	stored, err := e.classes.GetClass(ctx, gym.ID, class.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Enrolled)
}

func TestClasses_CoachSnapshotAndValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gym := e.createGym(t, "Iron Dakar", "iron@dakar.sn")
	coach, err := e.coaches.CreateCoach(ctx, gym.ID, CoachInput{Name: "Ali Diop"})
	require.NoError(t, err)

	in := ClassInput{Name: "HIIT", Type: domain.ClassGroup, CoachID: coach.ID, Date: mustDate(t, "2025-10-25"), Time: "07:15", Capacity: 3}
	class, err := e.classes.CreateClass(ctx, gym.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Ali Diop", class.CoachName)

	bad := in
	bad.Time = "7h15"
	_, err = e.classes.CreateClass(ctx, gym.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = in
	bad.CoachID = "ghost"
	_, err = e.classes.CreateClass(ctx, gym.ID, bad)
	assert.ErrorIs(t, err, ErrCoachNotFound)

	_, err = e.classes.Book(ctx, gym.ID, class.ID)
	require.NoError(t, err)
	_, err = e.classes.Book(ctx, gym.ID, class.ID)
	require.NoError(t, err)

	shrink := in
	shrink.Capacity = 1
	_, err = e.classes.UpdateClass(ctx, gym.ID, class.ID, shrink)
	assert.ErrorIs(t, err, ErrInvalidInput)

	found, err := e.classes.ListClasses(ctx, gym.ID, ClassFilter{Search: "ali"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestUpcoming(t *testing.T) {
	today := mustDate(t, "2025-10-23")
	classes := []domain.Class{
		{Name: "past", Date: mustDate(t, "2025-10-22"), Time: "10:00"},
		{Name: "later", Date: mustDate(t, "2025-10-25"), Time: "08:00"},
		{Name: "today-evening", Date: today, Time: "19:00"},
		{Name: "today-morning", Date: today, Time: "07:00"},
		{Name: "next-week", Date: mustDate(t, "2025-10-30"), Time: "08:00"},
	}

	got := upcoming(classes, today, 0)
	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"today-morning", "today-evening", "later"}, names)
	assert.Len(t, upcoming(classes, today, 10), 4)
}
