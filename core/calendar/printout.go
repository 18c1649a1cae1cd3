package calendar

import (
	"sort"

	"github.com/crescendoapp/crescendo/core/session"
)

type (
	// PrintFilter selects the sessions of a printable schedule.
	PrintFilter struct {
		Start        string `query:"start"` // YYYY-MM-DD, inclusive
		End          string `query:"end"`   // YYYY-MM-DD, inclusive
		InstrumentID *int   `query:"instrument_id"`
	}

	PrintGroup struct {
		Date     string            `json:"date"`
		Label    string            `json:"label"`
		Sessions []session.Session `json:"sessions"`
	}

	Printout struct {
		Start  string       `json:"start"`
		End    string       `json:"end"`
		Groups []PrintGroup `json:"groups"`
	}
)

const printTmpl = `{{define "print"}}<div class="schedule-printout">
<div class="header"><h2>Schedule Printout</h2><p>Period: {{.Start}} &ndash; {{.End}}</p></div>
{{- range .Groups}}
<div class="date-header">{{.Label}}</div>
<table class="schedule-table">
<thead><tr><th>Time</th><th>Session</th><th>Duration</th><th>Notes</th></tr></thead>
<tbody>
{{- range .Sessions}}
<tr><td>{{.Time}}</td><td>{{.Title}}</td><td>{{.Duration}} minutes</td><td>{{.Notes}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}
</div>
{{end}}`

// BuildPrintout selects the cached sessions within the filter's date range,
// sorted by date then time and grouped by date.
func (st *State) BuildPrintout(f PrintFilter) Printout {
	var matches []session.Session
	for _, s := range st.Sessions() {
		if f.Start != "" && s.Date < f.Start {
			continue
		}
		if f.End != "" && s.Date > f.End {
			continue
		}
		if f.InstrumentID != nil && (s.InstrumentID == nil || *s.InstrumentID != *f.InstrumentID) {
			continue
		}
		matches = append(matches, s)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Date != matches[j].Date {
			return matches[i].Date < matches[j].Date
		}
		return matches[i].Time < matches[j].Time
	})

	out := Printout{Start: f.Start, End: f.End}
	for _, s := range matches {
		if n := len(out.Groups); n == 0 || out.Groups[n-1].Date != s.Date {
			out.Groups = append(out.Groups, PrintGroup{Date: s.Date, Label: DayLabel(s.Date)})
		}
		last := &out.Groups[len(out.Groups)-1]
		last.Sessions = append(last.Sessions, s)
	}
	return out
}
