// Package tui is the interactive terminal front end: tabs for the list views,
// a tasks pane, the add / edit form and the nearest event search.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rooydad/src-app/agenda"
	"rooydad/src-app/handler"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"
	"rooydad/src-app/scheduler"
	"rooydad/src-app/utils"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	msgCreated       = "رویداد با موفقیت اضافه شد!"
	msgModified      = "رویداد با موفقیت ویرایش شد!"
	msgDeleted       = "رویداد با موفقیت حذف شد!"
	msgSelectEvent   = "لطفاً یک رویداد را انتخاب کنید!"
	msgConfirmDelete = "آیا مطمئن هستید که می‌خواهید این رویداد را حذف کنید؟"
	msgNothingFound  = "هیچ رویدادی یافت نشد!"
)

type screen int

const (
	screenBrowse screen = iota
	screenForm
	screenConfirmDelete
	screenSearch
)

// tabs in the order of the 0-3 keys
var tabs = []handler.Mode{handler.ModeNearest, handler.ModeUpcoming, handler.ModeAll, handler.ModeWeekly}

type tickMsg time.Time

type loadedMsg struct {
	mode    handler.Mode
	events  []model.Event
	nearest *agenda.Occurrence
	week    *agenda.Week
	tasks   []model.Event
	err     error
}

type savedMsg struct {
	text string
	err  error
}

type searchMsg struct {
	query string
	occ   *agenda.Occurrence
	err   error
}

type reminderMsg struct {
	occs []agenda.Occurrence
}

type appModel struct {
	ctx context.Context
	as  *utils.AppState

	screen screen
	tab    int
	now    time.Time
	width  int
	height int

	events  []model.Event
	nearest *agenda.Occurrence
	week    *agenda.Week
	tasks   []model.Event

	table      table.Model
	tasksTable table.Model

	form          form
	search        textinput.Model
	searchQuery   string
	searchResult  *agenda.Occurrence
	pendingDelete *model.Event

	status    string
	statusErr bool
	reminder  string
}

func newTable(focused bool, height int) table.Model {
	t := table.New(
		table.WithFocused(focused),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	if focused {
		s.Selected = s.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))
	} else {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)
	return t
}

func newAppModel(ctx context.Context, as *utils.AppState) appModel {
	search := newTextInput("1403-01-15 / next friday", 64)
	search.Prompt = "> "
	search.Width = 40

	return appModel{
		ctx:        ctx,
		as:         as,
		now:        as.Now(),
		table:      newTable(true, 12),
		tasksTable: newTable(false, 5),
		search:     search,
	}
}

func (m appModel) mode() handler.Mode {
	return tabs[m.tab]
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// #region - commands

func (m appModel) load() tea.Cmd {
	ctx, as, mode := m.ctx, m.as, m.mode()
	return func() tea.Msg {
		msg := loadedMsg{mode: mode}
		switch mode {
		case handler.ModeNearest:
			msg.nearest, msg.err = handler.Nearest(ctx, as)
		case handler.ModeWeekly:
			msg.week, msg.err = handler.Week(ctx, as)
		default:
			msg.events, msg.err = handler.List(ctx, as, mode)
		}
		if msg.err != nil {
			return msg
		}
		msg.tasks, msg.err = handler.List(ctx, as, handler.ModeTasks)
		return msg
	}
}

func (m appModel) save(f form) tea.Cmd {
	ctx, as := m.ctx, m.as
	in, id := f.input(), f.editID
	return func() tea.Msg {
		if id == 0 {
			_, err := handler.CreateEvent(ctx, as, in)
			return savedMsg{text: msgCreated, err: err}
		}
		_, err := handler.ModifyEvent(ctx, as, id, in)
		return savedMsg{text: msgModified, err: err}
	}
}

func (m appModel) remove(id int64) tea.Cmd {
	ctx, as := m.ctx, m.as
	return func() tea.Msg {
		return savedMsg{text: msgDeleted, err: handler.DeleteEvent(ctx, as, id)}
	}
}

func (m appModel) find(query string) tea.Cmd {
	ctx, as := m.ctx, m.as
	return func() tea.Msg {
		occ, err := handler.FindNearestFrom(ctx, as, query)
		return searchMsg{query: query, occ: occ, err: err}
	}
}

// #endregion

func (m *appModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// selected is the event edit and delete act on: the nearest event in the
// nearest tab, the highlighted row in list tabs.
func (m appModel) selected() *model.Event {
	switch m.mode() {
	case handler.ModeNearest:
		if m.searchResult != nil {
			e := *m.searchResult.Event
			return &e
		}
		if m.nearest != nil {
			e := *m.nearest.Event
			return &e
		}
	case handler.ModeWeekly:
		return nil
	default:
		i := m.table.Cursor()
		if i >= 0 && i < len(m.events) {
			e := m.events[i]
			return &e
		}
	}
	return nil
}

func (m *appModel) switchTab(tab int) tea.Cmd {
	m.tab = (tab + len(tabs)) % len(tabs)
	m.searchResult = nil
	m.searchQuery = ""
	return m.load()
}

func (m *appModel) refreshTables() {
	// rows must never be wider than the columns
	m.table.SetRows(nil)
	switch m.mode() {
	case handler.ModeWeekly:
		if m.week == nil {
			return
		}
		columns := make([]table.Column, len(m.week.Days))
		for i, day := range m.week.Days {
			columns[i] = table.Column{
				Title: fmt.Sprintf("%s %s", day.Name, jalali.Format(day.Date)),
				Width: 22,
			}
		}
		m.table.SetColumns(columns)
		rows := make([]table.Row, 0)
		for _, r := range m.week.Rows() {
			rows = append(rows, table.Row(r))
		}
		m.table.SetRows(rows)
	case handler.ModeNearest:
	default:
		m.table.SetColumns(eventColumns())
		m.table.SetRows(eventRows(m.events))
	}
	// an empty table leaves the cursor at -1
	if n, c := len(m.table.Rows()), m.table.Cursor(); n > 0 && (c < 0 || c >= n) {
		m.table.SetCursor(min(max(c, 0), n-1))
	}

	m.tasksTable.SetRows(nil)
	m.tasksTable.SetColumns(eventColumns())
	m.tasksTable.SetRows(eventRows(m.tasks))
}

var eventColumnWidths = []int{5, 24, 10, 22, 10, 30}

func eventColumns() []table.Column {
	columns := make([]table.Column, len(agenda.RowHeaders))
	for i, title := range agenda.RowHeaders {
		columns[i] = table.Column{Title: title, Width: eventColumnWidths[i]}
	}
	return columns
}

func eventRows(events []model.Event) []table.Row {
	rows := make([]table.Row, 0, len(events))
	for _, r := range agenda.PresentAll(events) {
		rows = append(rows, table.Row(r.Cells()))
	}
	return rows
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetHeight(max(5, msg.Height-20))
		return m, nil

	case tickMsg:
		prev := m.now
		m.now = m.as.Now()
		// views depend on the current minute
		if m.screen == screenBrowse && m.now.Truncate(time.Minute) != prev.Truncate(time.Minute) {
			return m, tea.Batch(tick(), m.load())
		}
		return m, tick()

	case loadedMsg:
		if msg.mode != m.mode() {
			return m, nil
		}
		if msg.err != nil {
			m.setStatus(handler.UserMessage(msg.err), true)
			return m, nil
		}
		m.events, m.nearest, m.week, m.tasks = msg.events, msg.nearest, msg.week, msg.tasks
		m.refreshTables()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			if m.screen == screenForm {
				m.form.err = handler.UserMessage(msg.err)
				return m, nil
			}
			m.setStatus(handler.UserMessage(msg.err), true)
			return m, m.load()
		}
		m.screen = screenBrowse
		m.searchResult = nil
		m.setStatus(msg.text, false)
		return m, m.load()

	case searchMsg:
		if msg.err != nil {
			m.setStatus(handler.UserMessage(msg.err), true)
			return m, nil
		}
		if msg.occ == nil {
			m.setStatus(msgNothingFound, false)
			return m, nil
		}
		m.tab = 0
		m.searchQuery = msg.query
		m.searchResult = msg.occ
		m.setStatus("", false)
		return m, m.load()

	case reminderMsg:
		titles := make([]string, 0, len(msg.occs))
		for _, occ := range msg.occs {
			titles = append(titles, fmt.Sprintf("%s (%s)", occ.Event.Title, occ.Start.Format(jalali.TimeLayout)))
		}
		m.reminder = "یادآوری: " + strings.Join(titles, "، ")
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenForm:
			return m.updateForm(msg)
		case screenConfirmDelete:
			return m.updateConfirm(msg)
		case screenSearch:
			return m.updateSearch(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "0", "1", "2", "3":
		m.setStatus("", false)
		return m, m.switchTab(int(key[0] - '0'))
	case "tab":
		return m, m.switchTab(m.tab + 1)
	case "shift+tab":
		return m, m.switchTab(m.tab - 1)
	case "r":
		m.searchResult = nil
		m.reminder = ""
		return m, m.load()
	case "a":
		m.setStatus("", false)
		m.form = newForm(m.as.Config.GetEventTypes(), m.as.Config.GetDefaultEventType())
		m.screen = screenForm
		return m, textinput.Blink
	case "e":
		e := m.selected()
		if e == nil {
			m.setStatus(msgSelectEvent, true)
			return m, nil
		}
		m.setStatus("", false)
		m.form = formFromEvent(e, m.as.Config.GetEventTypes(), m.as.Config.GetDefaultEventType())
		m.screen = screenForm
		return m, textinput.Blink
	case "d":
		e := m.selected()
		if e == nil {
			m.setStatus(msgSelectEvent, true)
			return m, nil
		}
		m.setStatus("", false)
		m.pendingDelete = e
		m.screen = screenConfirmDelete
		return m, nil
	case "/":
		m.setStatus("", false)
		m.search.SetValue("")
		m.screen = screenSearch
		return m, m.search.Focus()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.screen = screenBrowse
		return m, nil
	}
	f, cmd, submit := m.form.update(msg)
	m.form = f
	if submit {
		return m, m.save(m.form)
	}
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		m.screen = screenBrowse
		return m, m.remove(id)
	case "n", "N", "esc", "q":
		m.pendingDelete = nil
		m.screen = screenBrowse
	}
	return m, nil
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.screen = screenBrowse
		return m, nil
	case "enter":
		m.search.Blur()
		m.screen = screenBrowse
		return m, m.find(m.search.Value())
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// #region - view

func (m appModel) View() string {
	var b strings.Builder

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("رویداد"),
		clockStyle.Render(jalali.FormatClock(m.now)),
	))
	b.WriteString("\n")
	if m.reminder != "" {
		b.WriteString(noticeStyle.Render(m.reminder))
		b.WriteString("\n")
	}

	switch m.screen {
	case screenForm:
		b.WriteString(m.form.view())
		b.WriteString(helpStyle.Render("tab/↓ next • shift+tab/↑ previous • ←/→/space choose • ctrl+s save • esc cancel"))
	case screenConfirmDelete:
		b.WriteString(m.tabsView())
		b.WriteString(boxStyle.Render(fmt.Sprintf("%s\n\n%s",
			agenda.Describe(&agenda.Occurrence{Event: m.pendingDelete, Day: m.pendingDeleteDay()}),
			noticeStyle.Render(msgConfirmDelete),
		)))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("y delete • n cancel"))
	case screenSearch:
		b.WriteString(m.tabsView())
		b.WriteString(sectionStyle.Render("جستجوی نزدیک‌ترین رویداد از تاریخ"))
		b.WriteString("\n")
		b.WriteString(m.search.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter search • esc cancel"))
	default:
		b.WriteString(m.tabsView())
		b.WriteString(m.browseView())
		b.WriteString(helpStyle.Render("0-3/tab view • a add • e edit • d delete • / search • r reload • q quit"))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errStyle.Render(m.status))
		} else {
			b.WriteString(okStyle.Render(m.status))
		}
	}
	return b.String()
}

func (m appModel) pendingDeleteDay() time.Time {
	switch {
	case m.pendingDelete == nil:
		return m.now
	case m.pendingDelete.IsRecurring:
		return jalali.WeekStart(m.now).AddDate(0, 0, m.pendingDelete.RecurringDay)
	}
	day, err := time.ParseInLocation(jalali.GregorianLayout, m.pendingDelete.Date, m.now.Location())
	if err != nil {
		return m.now
	}
	return day
}

func (m appModel) tabsView() string {
	rendered := make([]string, len(tabs))
	for i, mode := range tabs {
		label := fmt.Sprintf("%d %s", i, mode.Title())
		if i == m.tab {
			rendered[i] = activeTabStyle.Render(label)
		} else {
			rendered[i] = tabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m appModel) browseView() string {
	var b strings.Builder
	switch m.mode() {
	case handler.ModeNearest:
		if m.searchResult != nil {
			b.WriteString(sectionStyle.Render("نزدیک‌ترین رویداد از " + m.searchQuery))
			b.WriteString("\n")
			b.WriteString(boxStyle.Render(agenda.Describe(m.searchResult)))
		} else {
			b.WriteString(sectionStyle.Render(m.mode().Title()))
			b.WriteString("\n")
			b.WriteString(boxStyle.Render(agenda.Describe(m.nearest)))
		}
	case handler.ModeWeekly:
		b.WriteString(sectionStyle.Render(m.mode().Title()))
		b.WriteString("\n")
		b.WriteString(m.table.View())
	default:
		b.WriteString(sectionStyle.Render(m.mode().Title()))
		b.WriteString("\n")
		if len(m.events) == 0 {
			b.WriteString(mutedStyle.Render(msgNothingFound))
		} else {
			b.WriteString(m.table.View())
		}
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render(handler.ModeTasks.Title()))
	b.WriteString("\n")
	if len(m.tasks) == 0 {
		b.WriteString(mutedStyle.Render(msgNothingFound))
	} else {
		b.WriteString(m.tasksTable.View())
	}
	b.WriteString("\n")
	return b.String()
}

// #endregion

// Run shows the interface until the user quits. Reminders are sent on
// REMINDER_CRON while it runs and also show up in the header.
func Run(as *utils.AppState) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	program := tea.NewProgram(newAppModel(ctx, as), tea.WithAltScreen())

	notifiers := scheduler.NotifiersFromConfig(as.Config)
	notifiers = append(notifiers, scheduler.NotifierFunc(func(_ context.Context, occs []agenda.Occurrence) error {
		program.Send(reminderMsg{occs: occs})
		return nil
	}))
	if err := scheduler.NewReminder(as, notifiers...).Start(); err != nil {
		return fmt.Errorf("tui.Run: %w", err)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui.Run: %w", err)
	}
	return nil
}
