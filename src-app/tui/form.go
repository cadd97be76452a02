package tui

import (
	"fmt"
	"strings"

	"rooydad/src-app/handler"
	"rooydad/src-app/jalali"
	"rooydad/src-app/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formField int

const (
	fieldTitle formField = iota
	fieldType
	fieldRecurring
	fieldDate
	fieldWeekday
	fieldEndDate
	fieldTime
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldTitle:       "عنوان",
	fieldType:        "نوع",
	fieldRecurring:   "تکراری",
	fieldDate:        "تاریخ (شمسی)",
	fieldWeekday:     "روز تکرار",
	fieldEndDate:     "تاریخ پایان",
	fieldTime:        "ساعت",
	fieldDescription: "توضیحات",
}

// form is the add / edit entry form. Choice fields (type, weekday,
// recurring) cycle with left/right; the rest are text inputs.
type form struct {
	// zero when adding
	editID int64

	title       textinput.Model
	date        textinput.Model
	endDate     textinput.Model
	clock       textinput.Model
	description textinput.Model

	types     []string
	typeIndex int
	// -1 until the user picks a day
	weekday   int
	recurring bool

	focus formField
	err   string
}

func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

func newForm(types []string, defaultType string) form {
	f := form{
		title:       newTextInput("", 200),
		date:        newTextInput("1403-01-01", 10),
		endDate:     newTextInput("اختیاری", 10),
		clock:       newTextInput("HH:MM اختیاری", 5),
		description: newTextInput("", 500),
		types:       append([]string(nil), types...),
		weekday:     -1,
	}
	f.typeIndex = f.indexOfType(defaultType)
	f.setFocus(fieldTitle)
	return f
}

// formFromEvent prefills the form with a stored event.
func formFromEvent(e *model.Event, types []string, defaultType string) form {
	f := newForm(types, defaultType)
	f.editID = e.ID

	in := handler.InputFromEvent(e)
	f.title.SetValue(in.Title)
	f.typeIndex = f.indexOfType(in.EventType)
	f.recurring = in.IsRecurring
	f.date.SetValue(in.Date)
	f.endDate.SetValue(in.EndDate)
	f.clock.SetValue(in.Time)
	f.description.SetValue(in.Description)
	if in.IsRecurring {
		f.weekday = e.RecurringDay
	}
	return f
}

// indexOfType adds t to the choices when it isn't one of them.
func (f *form) indexOfType(t string) int {
	for i, known := range f.types {
		if known == t {
			return i
		}
	}
	if t == "" {
		return max(0, len(f.types)-1)
	}
	f.types = append(f.types, t)
	return len(f.types) - 1
}

func (f form) input() handler.Input {
	in := handler.Input{
		Title:       f.title.Value(),
		Date:        f.date.Value(),
		Time:        f.clock.Value(),
		Description: f.description.Value(),
		IsRecurring: f.recurring,
		EndDate:     f.endDate.Value(),
	}
	if f.typeIndex >= 0 && f.typeIndex < len(f.types) {
		in.EventType = f.types[f.typeIndex]
	}
	if f.weekday >= 0 {
		in.Weekday = jalali.WeekdayName(f.weekday)
	}
	return in
}

// enabled mirrors the recurring checkbox: a recurring event has a weekday
// and an end date instead of a date.
func (f form) enabled(field formField) bool {
	switch field {
	case fieldDate:
		return !f.recurring
	case fieldWeekday, fieldEndDate:
		return f.recurring
	default:
		return true
	}
}

func (f *form) textInput(field formField) *textinput.Model {
	switch field {
	case fieldTitle:
		return &f.title
	case fieldDate:
		return &f.date
	case fieldEndDate:
		return &f.endDate
	case fieldTime:
		return &f.clock
	case fieldDescription:
		return &f.description
	default:
		return nil
	}
}

func (f *form) setFocus(field formField) tea.Cmd {
	for i := fieldTitle; i < fieldCount; i++ {
		if ti := f.textInput(i); ti != nil {
			ti.Blur()
		}
	}
	f.focus = field
	if ti := f.textInput(field); ti != nil {
		return ti.Focus()
	}
	return nil
}

// move shifts the focus to the next enabled field in direction delta.
func (f *form) move(delta int) tea.Cmd {
	field := f.focus
	for range fieldCount {
		field = (field + formField(delta) + fieldCount) % fieldCount
		if f.enabled(field) {
			break
		}
	}
	return f.setFocus(field)
}

func (f *form) cycle(delta int) {
	switch f.focus {
	case fieldType:
		if len(f.types) > 0 {
			f.typeIndex = (f.typeIndex + delta + len(f.types)) % len(f.types)
		}
	case fieldWeekday:
		if f.weekday < 0 {
			f.weekday = 0
			return
		}
		f.weekday = (f.weekday + delta + 7) % 7
	case fieldRecurring:
		f.recurring = !f.recurring
	}
}

// update handles a key while the form is open. submit is true when the
// user asked to save.
func (f form) update(msg tea.KeyMsg) (form, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+s":
		return f, nil, true
	case "enter":
		if f.focus == fieldDescription {
			return f, nil, true
		}
		return f, f.move(1), false
	case "tab", "down":
		return f, f.move(1), false
	case "shift+tab", "up":
		return f, f.move(-1), false
	}

	switch f.focus {
	case fieldType, fieldWeekday, fieldRecurring:
		switch msg.String() {
		case "left", "h":
			f.cycle(-1)
		case "right", "l", " ":
			f.cycle(1)
		}
		return f, nil, false
	}

	f.err = ""
	ti := f.textInput(f.focus)
	if ti == nil {
		return f, nil, false
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return f, cmd, false
}

func (f form) heading() string {
	if f.editID != 0 {
		return fmt.Sprintf("ویرایش رویداد #%d", f.editID)
	}
	return "افزودن رویداد"
}

func (f form) choiceView(field formField) string {
	switch field {
	case fieldType:
		if f.typeIndex < 0 || f.typeIndex >= len(f.types) {
			return "‹ - ›"
		}
		return fmt.Sprintf("‹ %s ›", f.types[f.typeIndex])
	case fieldWeekday:
		if f.weekday < 0 {
			return "‹ انتخاب کنید ›"
		}
		return fmt.Sprintf("‹ %s ›", jalali.WeekdayName(f.weekday))
	case fieldRecurring:
		if f.recurring {
			return "[x]"
		}
		return "[ ]"
	}
	return ""
}

func (f form) view() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(f.heading()))
	b.WriteString("\n")
	for field := fieldTitle; field < fieldCount; field++ {
		label := labelStyle.Render(fieldLabels[field])
		var value string
		if ti := f.textInput(field); ti != nil {
			value = ti.View()
		} else {
			value = f.choiceView(field)
		}
		line := label + value
		switch {
		case !f.enabled(field):
			line = mutedStyle.Render(labelStyle.Render(fieldLabels[field]) + "-")
		case field == f.focus:
			line = focusStyle.Render("> ") + line
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString(errStyle.Render(f.err))
		b.WriteString("\n")
	}
	return b.String()
}
