package http

import (
	"crypto/subtle"
	"net/http"
)

// SecretHeader — заголовок, которым Telegram подписывает вебхук.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecretMiddleware пропускает только запросы с верным секретом вебхука.
// Пустой секрет отключает проверку.
func WebhookSecretMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, "подпись недействительна", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
