// Package format renders ast units as source text with deterministic layout.
//
// Назначение: печать исходных и пониженных юнитов для CLI и golden-тестов.
// Не делает: сохранения комментариев и исходного форматирования.
// Зависимости: internal/ast, internal/parser (только для round-trip проверки).
package format
