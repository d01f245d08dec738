package models

import "time"

// User представляет зарегистрированного пользователя.
// SubscriptionAmount всегда равен количеству строк подписок пользователя
// и изменяется только вместе с этими строками в одной транзакции.
type User struct {
	UUID               string    `json:"id"`
	Username           string    `json:"user_name"`
	Email              string    `json:"email"`
	RegistrationTime   time.Time `json:"registration_time"`
	SubscriptionAmount int       `json:"subscription_amount"`
}

// DummyUser используется для приёма данных нового пользователя из JSON-запроса.
type DummyUser struct {
	Username string `json:"user_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// DummyUserUpdate используется для приёма изменений профиля.
// Email меняется только если передан.
type DummyUserUpdate struct {
	Username string  `json:"user_name" validate:"required"`
	Email    *string `json:"new_email,omitempty" validate:"omitempty,email"`
}
