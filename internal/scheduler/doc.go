// Package scheduler вычисляет время срабатывания schedule spec.
//
// Структура:
//   - cron.go — парсинг cron-выражений и вычисление следующего времени
//
// Используется фасадом переводов для валидации spec до отправки в движок
// и драйвером pgengine для расчёта next_due_at.
package scheduler
