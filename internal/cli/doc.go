// Package cli реализует инструмент командной строки todos.
//
// # Обзор
//
// CLI — клиентская утилита для todos API. Работает через HTTP и не
// импортирует внутренние пакеты сервиса.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для todos API. Инкапсулирует запросы, разбор ответов
// и ошибок ({"error":{"code","message"}} превращается в *APIError).
//
//	client := cli.NewClient("http://localhost:8080")
//	todos, err := client.ListTodos()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: todos list --json | jq .
//
// ## Commands
//
// Cobra-команды верхнего уровня: list, show, add, update, done, delete, clear.
// NewTodoCommands принимает clientFn и outputFn — замыкания для ленивого
// создания Client и Output после парсинга PersistentFlags.
package cli
