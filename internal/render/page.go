package render

import (
	"html/template"
	"io"

	"classclock/internal/clock"
)

type labels struct {
	Title, Now, Subject, Start, End, Remaining, Minutes string

	Announce                 map[clock.Kind]string
	ShowMinutes, HideMinutes string
	Timetable, Load          string
}

var pageLabels = map[clock.Lang]labels{
	clock.LangJapanese: {
		Title:     "教室の時計",
		Now:       "現在時刻",
		Subject:   "授業",
		Start:     "開始",
		End:       "終了",
		Remaining: "のこり",
		Minutes:   "分",
		Announce: map[clock.Kind]string{
			clock.KindTime:      "時刻",
			clock.KindName:      "授業名",
			clock.KindStart:     "開始時刻",
			clock.KindEnd:       "終了時刻",
			clock.KindRemaining: "残り時間",
		},
		ShowMinutes: "分表示",
		HideMinutes: "分非表示",
		Timetable:   "時刻表",
		Load:        "読み込む",
	},
	clock.LangEnglish: {
		Title:     "Classroom clock",
		Now:       "Now",
		Subject:   "Period",
		Start:     "Starts",
		End:       "Ends",
		Remaining: "Remaining",
		Minutes:   "min",
		Announce: map[clock.Kind]string{
			clock.KindTime:      "Time",
			clock.KindName:      "Period",
			clock.KindStart:     "Start",
			clock.KindEnd:       "End",
			clock.KindRemaining: "Remaining",
		},
		ShowMinutes: "Show minutes",
		HideMinutes: "Hide minutes",
		Timetable:   "Timetable",
		Load:        "Load",
	},
}

// PageOptions controls the HTML page.
type PageOptions struct {
	Options
	Lang clock.Lang
	// Refresh is the meta refresh interval in seconds; zero disables it.
	Refresh int

	// Controls adds the announcement buttons, the minute-mark toggle and,
	// when Timetables is non-empty, the timetable switch. They sit outside
	// #clock so element screenshots leave them out.
	Controls   bool
	Timetables []string
	Active     string
}

type button struct {
	Kind  clock.Kind
	Label string
}

type pageData struct {
	L       labels
	Lang    clock.Lang
	Snap    clock.Snapshot
	Face    template.HTML
	Refresh int

	Controls    bool
	Buttons     []button
	Minutes     string
	ToggleHref  string
	ToggleLabel string
	Timetables  []string
	Active      string
}

var pageTmpl = template.Must(template.New("clock").Parse(`<!doctype html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
{{- if gt .Refresh 0}}
<meta http-equiv="refresh" content="{{.Refresh}}">
{{- end}}
<title>{{.L.Title}}</title>
<style>
body { font-family: sans-serif; margin: 0; display: flex; justify-content: center; }
main { padding: 24px; text-align: center; }
#digital-clock { font-size: 48px; font-weight: bold; margin: 12px 0; }
dl { display: grid; grid-template-columns: auto auto; gap: 4px 16px; font-size: 24px; }
dt { text-align: right; color: #555; }
dd { margin: 0; text-align: left; }
#controls { padding: 24px; display: flex; flex-direction: column; gap: 12px; }
#controls form { display: inline; }
#controls button { font-size: 18px; }
</style>
</head>
<body>
<main id="clock" data-ready="true" data-state="{{.Snap.State}}">
<div id="analog-clock">{{.Face}}</div>
<div id="digital-clock" aria-label="{{.L.Now}}">{{.Snap.Digital}}</div>
<dl>
<dt>{{.L.Subject}}</dt><dd id="current-subject">{{.Snap.Name}}</dd>
<dt>{{.L.Start}}</dt><dd id="current-start">{{.Snap.Start}}</dd>
<dt>{{.L.End}}</dt><dd id="current-end">{{.Snap.End}}</dd>
<dt>{{.L.Remaining}}</dt><dd id="current-remaining">{{.Snap.RemainingText}}{{if .Snap.Active}} {{.L.Minutes}}{{end}}</dd>
</dl>
</main>
{{- if .Controls}}
<nav id="controls">
<div id="announce">
{{- range .Buttons}}
<form method="post" action="/clock/announce/{{.Kind}}"><input type="hidden" name="minutes" value="{{$.Minutes}}"><button type="submit">{{.Label}}</button></form>
{{- end}}
</div>
<a id="minute-toggle" href="{{.ToggleHref}}">{{.ToggleLabel}}</a>
{{- if .Timetables}}
<form id="timetable-switch" method="post" action="/clock/timetable">
<input type="hidden" name="minutes" value="{{.Minutes}}">
<label>{{.L.Timetable}} <select name="timetable">
{{- range .Timetables}}
<option value="{{.}}"{{if eq . $.Active}} selected{{end}}>{{.}}</option>
{{- end}}
</select></label>
<button type="submit">{{.L.Load}}</button>
</form>
{{- end}}
</nav>
{{- end}}
</body>
</html>
`))

// Page writes the full clock page for snap.
func Page(w io.Writer, snap clock.Snapshot, opts PageOptions) error {
	l, ok := pageLabels[opts.Lang]
	if !ok {
		opts.Lang = clock.LangJapanese
		l = pageLabels[clock.LangJapanese]
	}
	data := pageData{
		L:       l,
		Lang:    opts.Lang,
		Snap:    snap,
		Face:    template.HTML(SVG(snap, opts.Options)),
		Refresh: opts.Refresh,
	}
	if opts.Controls {
		data.Controls = true
		data.Timetables = opts.Timetables
		data.Active = opts.Active
		for _, k := range clock.Kinds() {
			data.Buttons = append(data.Buttons, button{Kind: k, Label: l.Announce[k]})
		}
		data.ToggleHref, data.ToggleLabel = "/clock?minutes=1", l.ShowMinutes
		if opts.MinuteMarks {
			data.Minutes = "1"
			data.ToggleHref, data.ToggleLabel = "/clock", l.HideMinutes
		}
	}
	return pageTmpl.Execute(w, data)
}
