// Package fuzztests houses Go fuzz harnesses that exercise the yieldc
// pipeline (source -> lexer -> parser -> sema -> iterlower). Its goal is to
// smoke test robustness and guard against panics or hangs on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер, парсер, проверку и понижение итераторов.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/parser, internal/diag,
// internal/sema, internal/iterlower, internal/testkit.

package fuzztests
