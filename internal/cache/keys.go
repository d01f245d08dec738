package cache

import "fmt"

// MaxCachedTopLimit: наибольший размер рейтинга сервисов, который кладётся в кеш.
const MaxCachedTopLimit = 10

const topKeyPrefix = "subscriptions:top:"

// TopSubscriptionsKey возвращает ключ рейтинга из n сервисов.
func TopSubscriptionsKey(n int) string {
	return fmt.Sprintf("%s%d", topKeyPrefix, n)
}

// TopSubscriptionsKeys возвращает ключи всех кешируемых рейтингов.
// Их нужно сбрасывать при любом изменении набора строк подписок.
func TopSubscriptionsKeys() []string {
	keys := make([]string, 0, MaxCachedTopLimit)
	for n := 1; n <= MaxCachedTopLimit; n++ {
		keys = append(keys, TopSubscriptionsKey(n))
	}
	return keys
}
