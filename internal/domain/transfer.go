package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TransferInput — запрос на перевод между счетами.
//
// Создаётся вызывающей стороной и передаётся по значению:
// после создания не изменяется.
type TransferInput struct {
	// Amount — сумма в минорных единицах валюты (центах).
	Amount int `json:"amount"`

	// FromAccount — счёт списания.
	FromAccount string `json:"fromAccount"`

	// ToAccount — счёт зачисления.
	ToAccount string `json:"toAccount"`
}

// Validate проверяет, что перевод можно отправить в движок.
func (in TransferInput) Validate() error {
	if in.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", in.Amount)
	}
	if in.FromAccount == "" {
		return fmt.Errorf("source account is required")
	}
	if in.ToAccount == "" {
		return fmt.Errorf("destination account is required")
	}
	return nil
}

// AmountDecimal возвращает сумму в основных единицах (45 → 0.45).
func (in TransferInput) AmountDecimal() decimal.Decimal {
	return MinorUnits(in.Amount)
}

// MinorUnits переводит сумму в центах в decimal с двумя знаками.
func MinorUnits(cents int) decimal.Decimal {
	return decimal.New(int64(cents), -2)
}

// ChargeResult — результат списания средств.
type ChargeResult struct {
	ChargeID string `json:"chargeId"`
}

// TransferOutput — финальный результат execution перевода.
type TransferOutput struct {
	ChargeResult ChargeResult `json:"chargeResult"`
}

// WorkflowStatusFailed — значение TransferState.WorkflowStatus,
// которое выставляется, когда движок сообщает FAILED.
const WorkflowStatusFailed = "FAILED"

// TransferState — снимок состояния перевода, который execution отдаёт
// через query "transferStatus".
//
// Поле WorkflowStatus заполняет сама execution; клиент перезаписывает его
// при чтении, если движок сообщает FAILED (execution могла упасть раньше,
// чем обновила своё состояние).
type TransferState struct {
	ApprovalTime       int          `json:"approvalTime"`
	ProgressPercentage int          `json:"progressPercentage"`
	TransferState      string       `json:"transferState"`
	WorkflowStatus     string       `json:"workflowStatus"`
	ChargeResult       ChargeResult `json:"chargeResult"`
}

// ScheduleRequest — запрос на создание периодического перевода.
type ScheduleRequest struct {
	// Amount — сумма каждого перевода в центах.
	Amount int `json:"amount"`

	// IntervalSec — интервал между запусками в секундах.
	IntervalSec int `json:"interval"`

	// Count — сколько запусков выполнит schedule, после чего остановится.
	Count int `json:"count"`

	// CronExpr — cron-выражение вместо интервала (опционально).
	// Если задано, IntervalSec игнорируется.
	CronExpr string `json:"cron,omitempty"`
}
