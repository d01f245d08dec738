// Package sl содержит вспомогательные функции для формирования
// структурированных полей логгера slog с единообразными ключами.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil возвращается пустая строка, чтобы логирование не паниковало.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserUID возвращает поле с идентификатором пользователя.
func UserUID(uid string) slog.Attr {
	return slog.String("user_uid", uid)
}

// SubscriptionID возвращает поле с идентификатором подписки.
func SubscriptionID(id int) slog.Attr {
	return slog.Int("subscription_id", id)
}

// Service возвращает поле с названием сервиса подписки.
func Service(name string) slog.Attr {
	return slog.String("service_name", name)
}
