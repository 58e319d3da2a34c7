package services_test

import (
	"fmt"
	"testing"

	"natours_backend/internal/models"
	"natours_backend/internal/query"
	"natours_backend/internal/services/dto"
	"natours_backend/pkg/apperrors"
	"natours_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewers(t *testing.T, env *testEnv, n int) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, helpers.CreateUser(t, env.db, "Reviewer",
			fmt.Sprintf("reviewer%d@x.com", i), "secret123", models.UserRoleUser))
	}
	return users
}

func assertRatings(t *testing.T, env *testEnv, tourID string, avg float64, qty int) {
	t.Helper()
	tour := helpers.ReloadTour(t, env.db, tourID)
	assert.InDelta(t, avg, tour.RatingsAverage, 1e-9)
	assert.Equal(t, qty, tour.RatingsQuantity)
}

func TestReviewHooks_RecomputeOnCreateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Forest Hiker")
	users := reviewers(t, env, 3)

	var created []*models.Review
	for i, rating := range []int{4, 5, 3} {
		review, err := env.svc.ReviewService.CreateReview(env.db, users[i], tour.ID, &dto.CreateReviewRequest{
			Review: "Great tour", Rating: rating,
		})
		require.NoError(t, err)
		require.NotNil(t, review.User, "автор подгружается в ответ")
		created = append(created, review)
	}
	assertRatings(t, env, tour.ID, 4.0, 3)

	// Удаление отзыва с оценкой 3
	require.NoError(t, env.svc.ReviewService.DeleteReview(env.db, users[2], created[2].ID))
	assertRatings(t, env, tour.ID, 4.5, 2)

	require.NoError(t, env.svc.ReviewService.DeleteReview(env.db, users[0], created[0].ID))
	require.NoError(t, env.svc.ReviewService.DeleteReview(env.db, users[1], created[1].ID))
	assertRatings(t, env, tour.ID, models.DefaultRatingsAverage, 0)
}

func TestReviewHooks_RecomputeOnUpdate(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Sea Explorer")
	users := reviewers(t, env, 3)

	var first *models.Review
	for i, rating := range []int{4, 5, 5} {
		review, err := env.svc.ReviewService.CreateReview(env.db, users[i], tour.ID, &dto.CreateReviewRequest{
			Review: "Nice", Rating: rating,
		})
		require.NoError(t, err)
		if i == 0 {
			first = review
		}
	}
	// 14/3 = 4.666... округляется до одного знака
	assertRatings(t, env, tour.ID, 4.7, 3)

	rating := 1
	updated, err := env.svc.ReviewService.UpdateReview(env.db, users[0], first.ID, &dto.UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Rating)
	assertRatings(t, env, tour.ID, 3.7, 3)
}

func TestReviewService_TourFromBodyOverridesPath(t *testing.T) {
	env := newTestEnv(t)
	pathTour := helpers.CreateTour(t, env.db, "The Snow Adventurer")
	bodyTour := helpers.CreateTour(t, env.db, "The City Wanderer")
	user := reviewers(t, env, 1)[0]

	review, err := env.svc.ReviewService.CreateReview(env.db, user, pathTour.ID, &dto.CreateReviewRequest{
		Review: "Fun", Rating: 5, Tour: bodyTour.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, bodyTour.ID, review.TourID)
	assertRatings(t, env, bodyTour.ID, 5, 1)
	assertRatings(t, env, pathTour.ID, models.DefaultRatingsAverage, 0)
}

func TestReviewService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Park Camper")
	user := reviewers(t, env, 1)[0]

	_, err := env.svc.ReviewService.CreateReview(env.db, user, "", &dto.CreateReviewRequest{Review: "x", Rating: 3})
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))

	_, err = env.svc.ReviewService.CreateReview(env.db, user, "00000000-0000-0000-0000-000000000000",
		&dto.CreateReviewRequest{Review: "x", Rating: 3})
	assert.Equal(t, apperrors.CodeResourceNotFound, apperrors.CodeOf(err))

	_, err = env.svc.ReviewService.CreateReview(env.db, user, tour.ID, &dto.CreateReviewRequest{Review: "x", Rating: 3})
	require.NoError(t, err)

	// Второй отзыв на тот же тур
	_, err = env.svc.ReviewService.CreateReview(env.db, user, tour.ID, &dto.CreateReviewRequest{Review: "y", Rating: 4})
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.CodeOf(err))
	assertRatings(t, env, tour.ID, 3, 1)
}

func TestReviewService_OnlyAuthorOrAdminMayModify(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Wine Taster")
	users := reviewers(t, env, 2)
	admin := helpers.CreateUser(t, env.db, "Admin", "admin@x.com", "secret123", models.UserRoleAdmin)

	review, err := env.svc.ReviewService.CreateReview(env.db, users[0], tour.ID, &dto.CreateReviewRequest{Review: "Ok", Rating: 2})
	require.NoError(t, err)

	text := "Edited by someone else"
	_, err = env.svc.ReviewService.UpdateReview(env.db, users[1], review.ID, &dto.UpdateReviewRequest{Review: &text})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorIs(t, env.svc.ReviewService.DeleteReview(env.db, users[1], review.ID), apperrors.ErrForbidden)

	require.NoError(t, env.svc.ReviewService.DeleteReview(env.db, admin, review.ID))
	assertRatings(t, env, tour.ID, models.DefaultRatingsAverage, 0)

	_, err = env.svc.ReviewService.GetReview(env.db, review.ID)
	assert.Equal(t, apperrors.CodeResourceNotFound, apperrors.CodeOf(err))
}

func TestReviewService_ListByTour(t *testing.T) {
	env := newTestEnv(t)
	tourA := helpers.CreateTour(t, env.db, "The Star Gazer")
	tourB := helpers.CreateTour(t, env.db, "The Northern Lights")
	users := reviewers(t, env, 2)

	helpers.CreateReview(t, env.db, tourA.ID, users[0].ID, 5)
	helpers.CreateReview(t, env.db, tourA.ID, users[1].ID, 4)
	helpers.CreateReview(t, env.db, tourB.ID, users[0].ID, 3)

	q := query.Parse(nil, nil)

	reviews, err := env.svc.ReviewService.ListReviews(env.db, tourA.ID, q)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	all, err := env.svc.ReviewService.ListReviews(env.db, "", q)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAdminDeleteUser_RecomputesAffectedTours(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Desert Rider")
	users := reviewers(t, env, 2)

	_, err := env.svc.ReviewService.CreateReview(env.db, users[0], tour.ID, &dto.CreateReviewRequest{Review: "a", Rating: 1})
	require.NoError(t, err)
	_, err = env.svc.ReviewService.CreateReview(env.db, users[1], tour.ID, &dto.CreateReviewRequest{Review: "b", Rating: 5})
	require.NoError(t, err)
	assertRatings(t, env, tour.ID, 3, 2)

	require.NoError(t, env.svc.UserService.AdminDeleteUser(env.db, users[0].ID))
	assertRatings(t, env, tour.ID, 5, 1)
}

func TestRatingAggregator_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	tour := helpers.CreateTour(t, env.db, "The Lake Paddler")
	users := reviewers(t, env, 2)
	helpers.CreateReview(t, env.db, tour.ID, users[0].ID, 2)
	helpers.CreateReview(t, env.db, tour.ID, users[1].ID, 5)

	first, err := env.svc.RatingAggregator.Recompute(env.db, tour.ID)
	require.NoError(t, err)
	second, err := env.svc.RatingAggregator.Recompute(env.db, tour.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 3.5, first.Average, 1e-9)
	assert.Equal(t, int64(2), first.Quantity)
	assertRatings(t, env, tour.ID, 3.5, 2)
}
