package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - ключ, по которому в gin.Context лежит *gorm.DB
	DBContextKey = contextKey("db")

	// CurrentUserKey - ключ для *models.User, найденного Protect
	CurrentUserKey = contextKey("currentUser")
)
