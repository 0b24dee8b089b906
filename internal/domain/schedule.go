package domain

import "time"

// OverlapPolicy определяет, что делать, если очередной тик schedule
// наступил, а execution предыдущего тика ещё выполняется.
type OverlapPolicy string

const (
	// OverlapPolicySkip — тик пропускается целиком (не ставится в очередь).
	OverlapPolicySkip OverlapPolicy = "SKIP"

	// OverlapPolicyBufferOne — запоминается один отложенный запуск.
	OverlapPolicyBufferOne OverlapPolicy = "BUFFER_ONE"

	// OverlapPolicyBufferAll — запоминаются все отложенные запуски.
	OverlapPolicyBufferAll OverlapPolicy = "BUFFER_ALL"

	// OverlapPolicyCancelOther — предыдущая execution отменяется.
	OverlapPolicyCancelOther OverlapPolicy = "CANCEL_OTHER"

	// OverlapPolicyTerminateOther — предыдущая execution принудительно останавливается.
	OverlapPolicyTerminateOther OverlapPolicy = "TERMINATE_OTHER"

	// OverlapPolicyAllowAll — запуски выполняются параллельно.
	OverlapPolicyAllowAll OverlapPolicy = "ALLOW_ALL"
)

// OrDefault возвращает SKIP для пустой политики.
func (p OverlapPolicy) OrDefault() OverlapPolicy {
	if p == "" {
		return OverlapPolicySkip
	}
	return p
}

// ScheduleSpec — описание повторений schedule.
//
// Пустой ScheduleSpec допустим: такой schedule никогда не сработает,
// пока spec не обновят.
type ScheduleSpec struct {
	// Intervals — интервалы между запусками.
	Intervals []time.Duration `json:"intervals,omitempty"`

	// CronExpressions — cron-выражения ("минуты часы дни месяцы дни_недели").
	CronExpressions []string `json:"cron_expressions,omitempty"`
}

// IsEmpty возвращает true, если spec не задаёт ни одного повторения.
func (s ScheduleSpec) IsEmpty() bool {
	return len(s.Intervals) == 0 && len(s.CronExpressions) == 0
}

// ScheduleState — состояние schedule.
type ScheduleState struct {
	// Paused — schedule приостановлен и не создаёт executions.
	Paused bool `json:"paused"`

	// Note — комментарий к последней паузе/снятию с паузы.
	Note string `json:"note,omitempty"`

	// LimitedActions — включает ограничение по RemainingActions.
	LimitedActions bool `json:"limited_actions"`

	// RemainingActions — оставшееся число запусков.
	// Движок уменьшает его на каждый запуск; 0 останавливает schedule.
	RemainingActions int `json:"remaining_actions"`
}

// Exhausted возвращает true, если лимит запусков исчерпан.
func (s ScheduleState) Exhausted() bool {
	return s.LimitedActions && s.RemainingActions <= 0
}

// SchedulePolicy — политики schedule.
type SchedulePolicy struct {
	Overlap OverlapPolicy `json:"overlap"`
}
