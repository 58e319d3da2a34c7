package services_test

import (
	"testing"
	"time"

	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/repositories"
	"natours_backend/internal/services"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"
	"natours_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTourRequest(name string) *dto.CreateTourRequest {
	return &dto.CreateTourRequest{
		Name:         name,
		Duration:     14,
		MaxGroupSize: 8,
		Difficulty:   models.DifficultyMedium,
		Price:        997,
		Summary:      "Exploring the jaw-dropping US east coast",
		ImageCover:   "tour-2-cover.jpg",
	}
}

func TestTourService_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	guide := helpers.CreateUser(t, env.db, "Guide", "guide@x.com", "secret123", models.UserRoleGuide)

	req := newTourRequest("The Sea Explorer")
	req.Guides = []string{guide.ID}
	req.StartLocation = &models.GeoPoint{Coordinates: []float64{-80.185942, 25.774772}, Address: "Miami, USA"}

	created, err := env.svc.TourService.CreateTour(env.db, req)
	require.NoError(t, err)
	assert.Equal(t, "the-sea-explorer", created.Slug)
	assert.Equal(t, 2.0, created.DurationWeeks)
	assert.Equal(t, models.DefaultRatingsAverage, created.RatingsAverage)
	assert.Equal(t, "Point", created.StartLocation.Data().Type)

	got, err := env.svc.TourService.GetTour(env.db, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Guides, 1)
	assert.Equal(t, guide.ID, got.Guides[0].ID)
}

func TestTourService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	plainUser := helpers.CreateUser(t, env.db, "User", "user@x.com", "secret123", models.UserRoleUser)

	t.Run("discount above price", func(t *testing.T) {
		req := newTourRequest("The Forest Hiker")
		discount := 1000.0
		req.PriceDiscount = &discount
		_, err := env.svc.TourService.CreateTour(env.db, req)
		assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
	})

	t.Run("guide must have guide role", func(t *testing.T) {
		req := newTourRequest("The Forest Hiker")
		req.Guides = []string{plainUser.ID}
		_, err := env.svc.TourService.CreateTour(env.db, req)
		assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.svc.TourService.CreateTour(env.db, newTourRequest("The Snow Adventurer"))
		require.NoError(t, err)
		_, err = env.svc.TourService.CreateTour(env.db, newTourRequest("The Snow Adventurer"))
		assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
	})
}

func TestTourService_SecretToursAreHidden(t *testing.T) {
	env := newTestEnv(t)
	secret := helpers.CreateTour(t, env.db, "The Secret Hideaway", func(tour *models.Tour) {
		tour.SecretTour = true
	})
	helpers.CreateTour(t, env.db, "The Public Walker")

	_, err := env.svc.TourService.GetTour(env.db, secret.ID)
	assert.Equal(t, apperrors.CodeResourceNotFound, apperrors.CodeOf(err))

	tours, err := env.svc.TourService.ListTours(env.db, query.Parse(nil, repositories.TourQuerySchema))
	require.NoError(t, err)
	require.Len(t, tours, 1)
	assert.Equal(t, "The Public Walker", tours[0].Name)
}

func TestTourService_UpdateRenamesSlugAndChecksDiscount(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The City Wanderer")

	name := "The Town Wanderer"
	updated, err := env.svc.TourService.UpdateTour(env.db, tour.ID, &dto.UpdateTourRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "the-town-wanderer", updated.Slug)

	// Скидка сравнивается с текущей ценой (497)
	discount := 600.0
	_, err = env.svc.TourService.UpdateTour(env.db, tour.ID, &dto.UpdateTourRequest{PriceDiscount: &discount})
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))

	price := 700.0
	updated, err = env.svc.TourService.UpdateTour(env.db, tour.ID, &dto.UpdateTourRequest{Price: &price, PriceDiscount: &discount})
	require.NoError(t, err)
	require.NotNil(t, updated.PriceDiscount)
	assert.Equal(t, 600.0, *updated.PriceDiscount)
}

func TestTourService_DeleteRemovesReviews(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Wine Taster")
	user := helpers.CreateUser(t, env.db, "User", "user@x.com", "secret123", models.UserRoleUser)
	helpers.CreateReview(t, env.db, tour.ID, user.ID, 5)

	require.NoError(t, env.svc.TourService.DeleteTour(env.db, tour.ID))

	var count int64
	require.NoError(t, env.db.Model(&models.Review{}).Where("tour_id = ?", tour.ID).Count(&count).Error)
	assert.Zero(t, count)

	err := env.svc.TourService.DeleteTour(env.db, tour.ID)
	assert.Equal(t, apperrors.CodeResourceNotFound, apperrors.CodeOf(err))
}

func TestTourService_MonthlyPlan(t *testing.T) {
	env := newTestEnv(t)
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 9, 0, 0, 0, time.UTC) }

	helpers.CreateTour(t, env.db, "The Forest Hiker", func(tour *models.Tour) {
		tour.StartDates = datatypes.NewJSONSlice([]time.Time{date(2021, time.April, 25), date(2021, time.July, 20), date(2022, time.April, 1)})
	})
	helpers.CreateTour(t, env.db, "The Sea Explorer", func(tour *models.Tour) {
		tour.StartDates = datatypes.NewJSONSlice([]time.Time{date(2021, time.July, 5)})
	})
	helpers.CreateTour(t, env.db, "The Park Camper", func(tour *models.Tour) {
		tour.StartDates = datatypes.NewJSONSlice([]time.Time{date(2021, time.July, 15), date(2021, time.March, 3)})
	})

	plan, err := env.svc.TourService.MonthlyPlan(env.db, 2021)
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, 7, plan[0].Month)
	assert.Equal(t, 3, plan[0].NumTourStarts)
	assert.ElementsMatch(t, []string{"The Forest Hiker", "The Sea Explorer", "The Park Camper"}, plan[0].Tours)
	// Равные счетчики - по номеру месяца
	assert.Equal(t, 3, plan[1].Month)
	assert.Equal(t, 4, plan[2].Month)
}

func TestTourService_GeoQueries(t *testing.T) {
	env := newTestEnv(t)
	at := func(lng, lat float64) func(*models.Tour) {
		return func(tour *models.Tour) {
			tour.StartLocation = datatypes.NewJSONType(models.GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}})
		}
	}
	// Лос-Анджелес, Сан-Диего (~180 км), Нью-Йорк (~3900 км)
	helpers.CreateTour(t, env.db, "The Sea Explorer", at(-118.2437, 34.0522))
	helpers.CreateTour(t, env.db, "The Park Camper", at(-117.1611, 32.7157))
	helpers.CreateTour(t, env.db, "The City Wanderer", at(-74.0060, 40.7128))
	helpers.CreateTour(t, env.db, "The Nowhere Tour")

	center, err := services.ParseGeoQuery("34.0522,-118.2437", services.UnitKilometers)
	require.NoError(t, err)

	within, err := env.svc.TourService.ToursWithin(env.db, 250, center)
	require.NoError(t, err)
	names := make([]string, 0, len(within))
	for _, tour := range within {
		names = append(names, tour.Name)
	}
	assert.ElementsMatch(t, []string{"The Sea Explorer", "The Park Camper"}, names)

	distances, err := env.svc.TourService.Distances(env.db, center)
	require.NoError(t, err)
	require.Len(t, distances, 3)
	assert.Equal(t, "The Sea Explorer", distances[0].Name)
	assert.InDelta(t, 0, distances[0].Distance, 1e-6)
	assert.InDelta(t, 180, distances[1].Distance, 10)
	assert.Equal(t, "The City Wanderer", distances[2].Name)

	miles, err := services.ParseGeoQuery("34.0522,-118.2437", services.UnitMiles)
	require.NoError(t, err)
	distMi, err := env.svc.TourService.Distances(env.db, miles)
	require.NoError(t, err)
	assert.InDelta(t, distances[2].Distance/1.609, distMi[2].Distance, 15)
}

func TestParseGeoQuery_Invalid(t *testing.T) {
	cases := []struct{ latlng, unit string }{
		{"34.05", "km"},
		{"abc,def", "km"},
		{"95,10", "km"},
		{"34.05,-118.24", "yards"},
	}
	for _, c := range cases {
		_, err := services.ParseGeoQuery(c.latlng, c.unit)
		assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err), c.latlng+" "+c.unit)
	}
}

func TestTourService_Stats(t *testing.T) {
	env := newTestEnv(t)
	helpers.CreateTour(t, env.db, "The Forest Hiker", func(tour *models.Tour) { tour.Price = 400 })
	helpers.CreateTour(t, env.db, "The Sea Explorer", func(tour *models.Tour) { tour.Price = 600 })
	helpers.CreateTour(t, env.db, "The Low Rated Tour", func(tour *models.Tour) { tour.RatingsAverage = 3.0 })

	stats, err := env.svc.TourService.Stats(env.db)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "EASY", stats[0].Difficulty)
	assert.Equal(t, int64(2), stats[0].NumTours)
	assert.InDelta(t, 500, stats[0].AvgPrice, 1e-9)
}
