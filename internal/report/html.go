package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("report").Parse(htmlTemplate))
}

var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac"}

func color(topic int) string {
	if topic < 0 {
		return "#999999"
	}
	return palette[topic%len(palette)]
}

const (
	chartWidth  = 720.0
	chartHeight = 240.0
	barHeight   = 26.0
)

type barView struct {
	Y, Width    float64
	Color, Text string
	Count       int
	Percent     string
	Keywords    string
	NPMI        string
}

type lineView struct {
	Color, Name, Points string
}

type wordView struct {
	Word string
	Size int
}

type pointView struct {
	X, Y  float64
	Color string
	Title string
}

// templateData holds data for the HTML template.
type templateData struct {
	Title       string
	Total       int
	Undated     int
	Bars        []barView
	BarsHeight  float64
	Lines       []lineView
	FirstDay    string
	LastDay     string
	CloudTopic  string
	Cloud       []wordView
	Points      []pointView
	SummaryJSON template.JS
}

// RenderHTML writes a self-contained report page: topic shares with
// keywords, the per-day timeline, a word cloud for the largest topic and
// the document projection. points may be nil.
func RenderHTML(w io.Writer, s Summary, points []Point, title string) error {
	raw, err := json.Marshal(struct {
		Summary
		Points []Point `json:"points"`
	}{s, points})
	if err != nil {
		return fmt.Errorf("report: marshal summary: %w", err)
	}

	data := templateData{
		Title:       title,
		Total:       s.Total,
		Undated:     s.Undated,
		Bars:        bars(s),
		BarsHeight:  barHeight * float64(len(s.Topics)),
		Lines:       lines(s),
		Points:      scatter(points, s),
		SummaryJSON: template.JS(raw),
	}
	if n := len(s.Timeline); n > 0 {
		data.FirstDay = s.Timeline[0].Day
		data.LastDay = s.Timeline[n-1].Day
	}
	if len(s.Topics) > 0 {
		top := s.Topics[s.Largest()]
		data.CloudTopic = top.Name
		data.Cloud = cloud(top.Words)
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func bars(s Summary) []barView {
	most := 0
	for _, t := range s.Topics {
		if t.Count > most {
			most = t.Count
		}
	}
	out := make([]barView, len(s.Topics))
	for i, t := range s.Topics {
		width := 0.0
		if most > 0 {
			width = (chartWidth - 260) * float64(t.Count) / float64(most)
		}
		kw := t.Keywords
		if len(kw) > 2 {
			kw = kw[:2]
		}
		out[i] = barView{
			Y:        float64(i) * barHeight,
			Width:    width,
			Color:    color(t.Topic),
			Text:     t.Name,
			Count:    t.Count,
			Percent:  fmt.Sprintf("%.1f%%", 100*t.Share),
			Keywords: strings.Join(kw, ", "),
			NPMI:     fmt.Sprintf("%.2f", t.NPMI),
		}
	}
	return out
}

func lines(s Summary) []lineView {
	n := len(s.Timeline)
	if n == 0 {
		return nil
	}
	peak := 1
	for _, d := range s.Timeline {
		for _, c := range d.Counts {
			if c > peak {
				peak = c
			}
		}
	}
	step := 0.0
	if n > 1 {
		step = chartWidth / float64(n-1)
	}
	out := make([]lineView, len(s.Topics))
	for k, t := range s.Topics {
		pts := make([]string, n)
		for i, d := range s.Timeline {
			c := 0
			if k < len(d.Counts) {
				c = d.Counts[k]
			}
			y := chartHeight - chartHeight*float64(c)/float64(peak)
			pts[i] = fmt.Sprintf("%.1f,%.1f", float64(i)*step, y)
		}
		out[k] = lineView{Color: color(t.Topic), Name: t.Name, Points: strings.Join(pts, " ")}
	}
	return out
}

func cloud(words []WordCount) []wordView {
	if len(words) == 0 {
		return nil
	}
	hi, lo := float64(words[0].Count), float64(words[len(words)-1].Count)
	out := make([]wordView, len(words))
	for i, w := range words {
		size := 14
		if hi > lo {
			size = 12 + int(math.Round(28*(float64(w.Count)-lo)/(hi-lo)))
		}
		out[i] = wordView{Word: w.Word, Size: size}
	}
	return out
}

func scatter(points []Point, s Summary) []pointView {
	if len(points) == 0 {
		return nil
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	scale := func(v, lo, hi, size float64) float64 {
		if hi == lo {
			return size / 2
		}
		return 10 + (size-20)*(v-lo)/(hi-lo)
	}
	out := make([]pointView, len(points))
	for i, p := range points {
		name := fmt.Sprintf("topic %d", p.Topic)
		if p.Topic >= 0 && p.Topic < len(s.Topics) {
			name = s.Topics[p.Topic].Name
		}
		if p.Label != "" {
			name = p.Label + " (" + name + ")"
		}
		out[i] = pointView{
			X:     scale(p.X, minX, maxX, chartWidth),
			Y:     scale(p.Y, minY, maxY, chartWidth*0.6),
			Color: color(p.Topic),
			Title: name,
		}
	}
	return out
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, "Liberation Sans", "DejaVu Sans", sans-serif; margin: 2em; color: #222; }
h2 { margin-top: 2em; }
svg text { font-size: 12px; }
.cloud span { display: inline-block; margin: 0 .4em; }
.muted { color: #777; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Total}} documents{{if .Undated}}, {{.Undated}} without a date{{end}}.</p>

<h2>Topics</h2>
<svg id="topics" width="720" height="{{.BarsHeight}}">
{{- range .Bars}}
<g transform="translate(0,{{.Y}})">
<text x="0" y="16">{{.Text}}</text>
<rect x="200" y="4" width="{{.Width}}" height="18" fill="{{.Color}}"><title>{{.Keywords}} (npmi {{.NPMI}})</title></rect>
<text x="{{.Width}}" dx="206" y="16">{{.Count}} ({{.Percent}}) {{.Keywords}}</text>
</g>
{{- end}}
</svg>

<h2>Timeline</h2>
{{- if .Lines}}
<svg id="timeline" width="720" height="260" viewBox="-10 -10 740 270">
<line x1="0" y1="240" x2="720" y2="240" stroke="#ccc"/>
{{- range .Lines}}
<polyline fill="none" stroke="{{.Color}}" stroke-width="2" points="{{.Points}}"><title>{{.Name}}</title></polyline>
{{- end}}
</svg>
<p class="muted">{{.FirstDay}} to {{.LastDay}}</p>
{{- else}}
<p class="muted">No dated documents.</p>
{{- end}}

<h2>Word cloud: {{.CloudTopic}}</h2>
<div class="cloud">
{{- range .Cloud}}<span style="font-size: {{.Size}}px">{{.Word}}</span>{{end}}
</div>

{{- if .Points}}
<h2>Document map</h2>
<svg id="projection" width="720" height="432">
{{- range .Points}}
<circle cx="{{printf "%.1f" .X}}" cy="{{printf "%.1f" .Y}}" r="4" fill="{{.Color}}" fill-opacity="0.7"><title>{{.Title}}</title></circle>
{{- end}}
</svg>
{{- end}}

<script id="report-data" type="application/json">{{.SummaryJSON}}</script>
</body>
</html>
`
