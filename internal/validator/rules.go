package validator

import (
	"log"
	"reflect"

	"natours_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка регистрации - ошибка сборки приложения
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	// При регистрации роль admin выбрать нельзя
	mustRegister("is-signup-role", validateSignupRole)
	mustRegister("is-difficulty", validateDifficulty)
	// 'lt-price': скидка меньше поля Price той же структуры
	mustRegister("lt-price", validateDiscountBelowPrice)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые проверяет 'required'
	}
	return models.UserRole(value).IsValid()
}

func validateSignupRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	role := models.UserRole(value)
	return role.IsValid() && role != models.UserRoleAdmin
}

func validateDifficulty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.Difficulty(value).IsValid()
}

func validateDiscountBelowPrice(fl validator.FieldLevel) bool {
	discount, ok := floatValue(fl.Field())
	if !ok {
		return true
	}
	price, ok := floatValue(fl.Parent().FieldByName("Price"))
	if !ok {
		// Цена не передана (частичное обновление) - проверит сервис
		return true
	}
	return discount < price
}

func floatValue(v reflect.Value) (float64, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	}
	return 0, false
}
