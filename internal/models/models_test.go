package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_ChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	u := &User{}
	assert.False(t, u.ChangedPasswordAfter(issued), "без смены пароля токен не устаревает")

	later := issued.Add(time.Hour)
	u.PasswordChangedAt = &later
	assert.True(t, u.ChangedPasswordAfter(issued))

	earlier := issued.Add(-time.Hour)
	u.PasswordChangedAt = &earlier
	assert.False(t, u.ChangedPasswordAfter(issued))

	// Смена через доли секунды после выдачи уже делает токен устаревшим
	subSecond := issued.Add(300 * time.Millisecond)
	u.PasswordChangedAt = &subSecond
	assert.True(t, u.ChangedPasswordAfter(issued))

	// Та же миллисекунда: токен, выданный при смене, остается валидным
	sameMilli := issued.Add(400 * time.Microsecond)
	u.PasswordChangedAt = &sameMilli
	assert.False(t, u.ChangedPasswordAfter(issued))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "the-forest-hiker", Slugify("The Forest Hiker"))
	assert.Equal(t, "sea-explorer-2", Slugify("  Sea   Explorer #2 "))
}

func TestRolesAndDifficulty(t *testing.T) {
	assert.True(t, UserRoleLeadGuide.IsValid())
	assert.False(t, UserRole("root").IsValid())
	assert.True(t, UserRoleGuide.IsGuide())
	assert.False(t, UserRoleAdmin.IsGuide())
	assert.True(t, DifficultyMedium.IsValid())
	assert.False(t, Difficulty("extreme").IsValid())
}

func TestTour_DurationWeeks(t *testing.T) {
	tour := &Tour{Duration: 14}
	assert.Equal(t, 2.0, tour.DurationWeeks())
}
