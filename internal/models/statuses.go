package models

type UserRole string
type Difficulty string

const (
	UserRoleUser      UserRole = "user"
	UserRoleGuide     UserRole = "guide"
	UserRoleLeadGuide UserRole = "lead-guide"
	UserRoleAdmin     UserRole = "admin"

	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleGuide, UserRoleLeadGuide, UserRoleAdmin:
		return true
	}
	return false
}

// IsGuide - роли, которые можно назначить гидом тура
func (r UserRole) IsGuide() bool {
	return r == UserRoleGuide || r == UserRoleLeadGuide
}

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}
