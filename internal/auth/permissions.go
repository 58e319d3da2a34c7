package auth

import "natours_backend/internal/models"

// RoleSet - набор ролей, которым разрешен маршрут
type RoleSet map[models.UserRole]struct{}

func NewRoleSet(roles ...models.UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Allows(role models.UserRole) bool {
	_, ok := s[role]
	return ok
}

// CanManageReview: автор отзыва или администратор
func CanManageReview(user *models.User, review *models.Review) bool {
	if user == nil || review == nil {
		return false
	}
	return user.Role == models.UserRoleAdmin || user.ID == review.UserID
}
