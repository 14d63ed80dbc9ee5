// Package ui renders state graphs of lowered iterators for the terminal.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"yieldc/internal/format"
	"yieldc/internal/iterlower"
)

// summaryWidth ограничивает колонку с первым оператором состояния.
const summaryWidth = 48

type styles struct {
	title, header, border, dim lipgloss.Style
	exit                       map[iterlower.TransitionKind]lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	st := styles{
		title:  r.NewStyle(),
		header: r.NewStyle().Padding(0, 1),
		border: r.NewStyle(),
		dim:    r.NewStyle().Padding(0, 1),
		exit:   make(map[iterlower.TransitionKind]lipgloss.Style),
	}
	for _, k := range []iterlower.TransitionKind{iterlower.TransYield, iterlower.TransJump, iterlower.TransContinue, iterlower.TransTerminate} {
		st.exit[k] = r.NewStyle().Padding(0, 1)
	}
	if !color {
		return st
	}
	st.title = st.title.Bold(true).Foreground(lipgloss.Color("7"))
	st.header = st.header.Bold(true)
	st.border = st.border.Foreground(lipgloss.Color("8"))
	st.dim = st.dim.Foreground(lipgloss.Color("7"))
	st.exit[iterlower.TransYield] = st.exit[iterlower.TransYield].Foreground(lipgloss.Color("2"))
	st.exit[iterlower.TransJump] = st.exit[iterlower.TransJump].Foreground(lipgloss.Color("6"))
	st.exit[iterlower.TransContinue] = st.exit[iterlower.TransContinue].Foreground(lipgloss.Color("6"))
	st.exit[iterlower.TransTerminate] = st.exit[iterlower.TransTerminate].Foreground(lipgloss.Color("1"))
	return st
}

// WriteStates prints the state graph and hoisted set of one lowered
// iterator.
func WriteStates(w io.Writer, l *iterlower.Lowered, color bool) error {
	st := newStyles(w, color)
	g := l.Graph
	header := fmt.Sprintf("%s -> %s  (%d states, %d yields, %d regions)",
		l.Method.QualifiedName(), l.Class.Name, len(g.States)-1, g.YieldCount(), len(g.Regions))
	if _, err := fmt.Fprintln(w, st.title.Render(header)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "hoisted: "+hoistedLine(l.Hoisted)); err != nil {
		return err
	}

	kinds := make([]iterlower.TransitionKind, len(g.States))
	rows := make([][]string, 0, len(g.States))
	for i, s := range g.States {
		kinds[i] = s.Term.Kind
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			regions(s.Regions),
			strconv.Itoa(len(s.Stmts)),
			exit(s.Term),
			summary(s),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers("STATE", "REGIONS", "STMTS", "EXIT", "FIRST STATEMENT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			if col == 3 {
				if idx := dataIndex(row); idx >= 0 && idx < len(kinds) {
					return st.exit[kinds[idx]]
				}
			}
			return st.dim
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// dataIndex переводит номер строки таблицы в индекс данных:
// строки данных идут сразу после заголовка.
func dataIndex(row int) int {
	return row - table.HeaderRow - 1
}

func hoistedLine(hs []iterlower.Hoisted) string {
	if len(hs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(hs))
	for i, h := range hs {
		uses := make([]string, 0, len(h.UseStates))
		for _, u := range h.UseStates {
			if u == iterlower.DisposeState {
				uses = append(uses, "dispose")
				continue
			}
			uses = append(uses, strconv.Itoa(u))
		}
		parts[i] = fmt.Sprintf("%s %s as %s (def %d, used %s)", h.Type, h.Name, h.Field, h.DefState, strings.Join(uses, ","))
	}
	return strings.Join(parts, "; ")
}

func regions(ids []iterlower.RegionID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "r" + strconv.Itoa(int(id))
	}
	return strings.Join(parts, ">")
}

func exit(t iterlower.Transition) string {
	var sb strings.Builder
	sb.WriteString(t.Kind.String())
	switch t.Kind {
	case iterlower.TransYield, iterlower.TransJump, iterlower.TransContinue:
		sb.WriteString(" -> ")
		sb.WriteString(strconv.Itoa(t.Target))
	}
	if len(t.Leave) > 0 {
		sb.WriteString(" leave ")
		sb.WriteString(regions(t.Leave))
	}
	return sb.String()
}

func summary(s *iterlower.State) string {
	if len(s.Stmts) == 0 {
		if s.Term.Kind == iterlower.TransYield && s.Term.Value != nil {
			return "yield return " + format.FormatExpr(s.Term.Value)
		}
		return ""
	}
	text := format.FormatStmt(s.Stmts[0], format.Options{})
	return truncate(strings.Join(strings.Fields(text), " "), summaryWidth)
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
