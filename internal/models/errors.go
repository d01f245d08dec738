package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidID возвращается, если идентификатор пользователя не является UUID.
	ErrInvalidID = errors.New("invalid user id")
	// ErrUserNotFound возвращается, если пользователя с таким идентификатором нет.
	ErrUserNotFound = errors.New("user not found")
	// ErrSubscriptionNotFound возвращается хранилищем, если строки подписки нет.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrInvalidDuration возвращается, если длительность подписки вне допустимого диапазона.
	ErrInvalidDuration = errors.New("subscription duration is out of range")
	// ErrEmailTaken возвращается, если email уже занят другим пользователем.
	ErrEmailTaken = errors.New("email already taken")
	// ErrStorage оборачивает любые ошибки хранилища.
	ErrStorage = errors.New("storage failure")
	// ErrConcurrentUpdate: конфликт параллельных транзакций (нарушение уникальности,
	// ошибка сериализации). Операцию можно повторить.
	ErrConcurrentUpdate = errors.New("concurrent update conflict")
)

// ActiveSubscriptionError возвращается при попытке оформить подписку,
// пока предыдущая на тот же сервис ещё действует.
type ActiveSubscriptionError struct {
	ServiceName string
	EndTime     time.Time
}

func (e *ActiveSubscriptionError) Error() string {
	return fmt.Sprintf("subscription to %q is not ended yet, it ends at %s",
		e.ServiceName, e.EndTime.Format(time.RFC3339))
}
