// Package cli реализует команды командной строки для переводов между счетами.
//
// # Обзор
//
// Команды работают поверх фасада transfer.Service, не зная, каким драйвером
// движка он собран. Фасад создаётся в cmd/transfer после разбора флагов
// и передаётся сюда через замыкание.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr,
// поэтому вывод можно передавать в pipe: transfer status ID --json | jq .
//
// ## Commands
//
//   - transfer: start, run, status, state, result
//   - schedule: create, show, unpause
//
// Каждая группа создаётся фабричной функцией (NewTransferCmd, NewScheduleCmd),
// принимающей clientFn и outputFn — замыкания для ленивого создания
// фасада и Output после парсинга PersistentFlags.
package cli
