// Package janitor удаляет выполненные todo по cron-расписанию.
//
// Структура:
//   - janitor.go — Janitor (Tick, Run)
//   - cron.go    — парсинг cron-выражений и вычисление следующего запуска
//
// Использование:
//
//	j, err := janitor.New(janitor.Config{
//	    Store:     store,
//	    Publisher: publisher, // опционально
//	    Logger:    logger,
//	    Cron:      "0 3 * * *",
//	})
//	go j.Run(ctx)
//
// Janitor не координирует несколько экземпляров: DeleteCompleted идемпотентна,
// поэтому параллельный запуск двух janitor'ов безопасен.
package janitor
