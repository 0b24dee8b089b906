// Package transfer — фасад запуска и контроля переводов в движке durable executions.
//
// # Операции
//
//   - StartTransfer   — генерирует reference number и асинхронно запускает execution
//   - Status          — статус execution по версии движка (describe)
//   - QueryState      — снимок состояния перевода с согласованием FAILED
//   - AwaitResult     — блокирующее ожидание результата с таймаутом
//   - CreateSchedule  — двухфазное создание периодического перевода (create + update)
//   - UnpauseSchedule — снятие schedule с паузы
//
// # Использование
//
//	svc := transfer.New(transfer.Config{
//	    Engine:    client,     // engine.Client
//	    Namespace: cfg.Namespace,
//	    TaskQueue: cfg.TaskQueue,
//	    Logger:    logger,
//	})
//
//	id, err := svc.StartTransfer(ctx, domain.TransferInput{
//	    Amount: 45, FromAccount: "account1", ToAccount: "account2",
//	})
//
// Service не хранит состояния между вызовами и безопасен
// для одновременного использования из нескольких горутин.
package transfer
