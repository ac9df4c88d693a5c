package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/sandeepkv93/stickynotes/internal/storage"
	"github.com/sandeepkv93/stickynotes/internal/views"
)

const (
	listTitleRunes = 40
	timeLayout     = "2006-01-02 15:04"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(none)")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func ago(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return humanize.Time(time.Unix(unix, 0))
}

func stamp(unix int64) string {
	return time.Unix(unix, 0).Format(timeLayout)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func optional(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func categoryNames(categories []storage.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func noteRows(notes []storage.Note, categories map[int64]string) [][]string {
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		pin := ""
		if n.IsPinned {
			pin = "*"
		}
		category := ""
		if n.CategoryID != nil {
			category = categories[*n.CategoryID]
		}
		when := ago(n.UpdatedAt)
		if n.DeletedAt != nil {
			when = ago(*n.DeletedAt)
		}
		rows = append(rows, []string{
			idString(n.ID),
			pin,
			views.NoteTitle(n.Content, listTitleRunes),
			category,
			optional(n.Color),
			when,
		})
	}
	return rows
}

func reminderRows(reminders []storage.Reminder) [][]string {
	rows := make([][]string, 0, len(reminders))
	for _, r := range reminders {
		state := "pending"
		if r.Triggered {
			state = "done"
		}
		rows = append(rows, []string{
			idString(r.ID),
			idString(r.NoteID),
			stamp(r.RemindAt),
			ago(r.RemindAt),
			state,
		})
	}
	return rows
}
