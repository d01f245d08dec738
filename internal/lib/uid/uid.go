// Package uid разбирает идентификаторы пользователей, пришедшие извне.
package uid

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Parse проверяет, что raw является UUID, и возвращает его каноническую запись.
// Ошибка всегда оборачивает models.ErrInvalidID.
func Parse(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidID, raw)
	}
	return id.String(), nil
}
