// Package models содержит доменные структуры подписок и пользователей,
// типы для приёма данных из JSON-запросов и ошибки бизнес-уровня.
package models

import "time"

// Subscription представляет собой строку подписки пользователя на сервис.
// Для пары (UserUID, ServiceName) в хранилище существует не более одной строки:
// продление переиспользует строку, а не создаёт новую.
type Subscription struct {
	ID          int       `json:"id"`           // Суррогатный ключ, назначается при вставке
	UserUID     string    `json:"user_id"`      // Владелец подписки
	ServiceName string    `json:"service_name"` // Название сервиса
	StartTime   time.Time `json:"start_time"`   // Начало периода действия
	EndTime     time.Time `json:"end_time"`     // Окончание периода, строго позже StartTime
}

// Active сообщает, действует ли подписка в момент now.
func (s Subscription) Active(now time.Time) bool {
	return s.EndTime.After(now)
}

// DummySubscription используется для приёма данных из JSON-запроса на оформление подписки.
type DummySubscription struct {
	ServiceName  string `json:"service_name" validate:"required"`
	DurationDays int    `json:"subscription_duration_days"` // Проверяется сервисом: от 1 до 36500 дней
}

// SubscribeResult описывает итог оформления подписки.
type SubscribeResult struct {
	ID           int  `json:"id"`            // ID новой или переиспользованной строки
	RowsAffected int  `json:"rows_affected"` // Количество затронутых строк подписок
	Renewed      bool `json:"renewed"`       // true, если истёкшая подписка была продлена
}

// TopSubscription: строка рейтинга сервисов по количеству подписок.
type TopSubscription struct {
	ServiceName string `json:"service_name"`
	Count       int    `json:"count"`
}
