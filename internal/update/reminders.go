package update

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/stickynotes/internal/apperr"
	"github.com/sandeepkv93/stickynotes/internal/scheduler"
)

const maxPending = 50

func waitForReminderCmd(ch <-chan scheduler.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Notification: n}
	}
}

// receiveReminder records a due reminder once. The scheduler redelivers a
// reminder on every poll until it is acknowledged.
func (m *Model) receiveReminder(n scheduler.Notification) {
	for _, p := range m.Pending {
		if p.ReminderID == n.ReminderID {
			return
		}
	}
	m.Pending = append(m.Pending, n)
	if len(m.Pending) > maxPending {
		m.Pending = m.Pending[len(m.Pending)-maxPending:]
	}
	m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s", n.Title())}
}

func (m *Model) dropPending(reminderID int64) {
	out := make([]scheduler.Notification, 0, len(m.Pending))
	for _, p := range m.Pending {
		if p.ReminderID != reminderID {
			out = append(out, p)
		}
	}
	m.Pending = out
}

// acknowledge marks reminders triggered. Reminders deleted in the meantime
// count as acknowledged.
func (m *Model) acknowledge(ids []int64) (int, error) {
	done := 0
	var errs []error
	for _, id := range ids {
		err := m.store.MarkTriggered(m.ctx, id)
		if err != nil && !apperr.Is(err, apperr.KindNotFound) {
			errs = append(errs, err)
			continue
		}
		m.dropPending(id)
		done++
	}
	return done, errors.Join(errs...)
}

// acknowledgeKey acknowledges every pending reminder, or the selected one in
// the reminders view when nothing is pending.
func (m Model) acknowledgeKey() Model {
	var ids []int64
	if len(m.Pending) > 0 {
		for _, p := range m.Pending {
			ids = append(ids, p.ReminderID)
		}
	} else if r, ok := m.selectedReminder(); ok && !r.Triggered {
		ids = []int64{r.ID}
	}
	if len(ids) == 0 {
		m.Status = StatusBar{Text: "no reminders to acknowledge"}
		return m
	}
	done, err := m.acknowledge(ids)
	m.reload()
	if err != nil {
		m.fail(err)
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("acknowledged %d reminder(s)", done)}
	return m
}
