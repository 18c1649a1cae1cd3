package calendar

import (
	"html/template"
	"io"

	"github.com/crescendoapp/crescendo/core/session"
)

// Action buttons carry data-action attributes instead of inline handlers;
// the frontend binds one delegated listener per action type.
const (
	ActionView   = "view"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

const gridTmpl = `{{define "grid"}}<div class="calendar-month" data-year="{{.Year}}" data-month="{{printf "%02d" .MonthNum}}">
<div class="calendar-header">{{.Label}}</div>
<div class="calendar-dates">
{{- range .Cells}}
{{- if eq .Day 0}}
<div class="calendar-date empty"></div>
{{- else}}
<div class="calendar-date{{if .HasSessions}} has-sessions{{end}}{{if .HasRecurring}} has-recurring-sessions{{end}}{{if .HasBlocked}} has-blocked-dates{{end}}{{if .IsToday}} today{{end}}" data-date="{{.Date}}">{{.Day}}</div>
{{- end}}
{{- end}}
</div>
</div>
{{end}}`

const dayTmpl = `{{define "day"}}<div class="day-detail" data-date="{{.Date}}">
<h3 class="sessions-title">Sessions for {{.Label}}</h3>
{{- if not .Sessions}}
<div class="no-data"><p>No sessions scheduled for this date.</p></div>
{{- else}}
<div class="sessions-list">
{{- range .Sessions}}
<div class="session-item{{if .IsSeriesInstance}} recurring{{end}}{{if .IsBlock}} blocked-session{{end}}" data-session-id="{{.ID}}"{{if .GroupID}} data-group-id="{{.GroupID}}"{{end}}>
<div class="session-time">{{.Time}}</div>
<div class="session-details">
<div class="session-title">{{.Title}}{{if .IsSeriesInstance}} <span class="badge">Recurring</span>{{end}}</div>
<div class="session-duration">Duration: {{.Duration}} minutes</div>
{{- if .Notes}}
<div class="session-notes">{{.Notes}}</div>
{{- end}}
</div>
{{- if $.CanManage}}
<div class="session-actions">
<button class="btn btn-sm" data-action="view" data-session-id="{{.ID}}">View</button>
<button class="btn btn-sm" data-action="edit" data-session-id="{{.ID}}">Edit</button>
<button class="btn btn-sm" data-action="delete" data-session-id="{{.ID}}">Delete</button>
</div>
{{- end}}
</div>
{{- end}}
</div>
{{- end}}
</div>
{{end}}`

type (
	gridView struct {
		Grid
		MonthNum int
	}

	// DayView is the day-detail rendering context. CanManage gates the
	// view/edit/delete affordances (admin and staff only).
	DayView struct {
		Date      string
		Label     string
		Sessions  []session.Session
		CanManage bool
	}

	Renderer struct {
		tmpl *template.Template
	}
)

func NewRenderer() *Renderer {
	t := template.Must(template.New("calendar").Parse(gridTmpl))
	template.Must(t.Parse(dayTmpl))
	template.Must(t.Parse(printTmpl))
	return &Renderer{tmpl: t}
}

// RenderGrid writes the month-grid fragment. Every date cell carries a
// data-date attribute in YYYY-MM-DD form.
func (r *Renderer) RenderGrid(w io.Writer, g Grid) error {
	return r.tmpl.ExecuteTemplate(w, "grid", gridView{Grid: g, MonthNum: int(g.Month)})
}

// RenderDay writes the day-detail fragment.
func (r *Renderer) RenderDay(w io.Writer, v DayView) error {
	if v.Label == "" {
		v.Label = DayLabel(v.Date)
	}
	return r.tmpl.ExecuteTemplate(w, "day", v)
}

// RenderPrintout writes the printable schedule table.
func (r *Renderer) RenderPrintout(w io.Writer, p Printout) error {
	return r.tmpl.ExecuteTemplate(w, "print", p)
}
