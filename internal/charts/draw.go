package charts

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sales-dashboard/internal/format"
	"sales-dashboard/internal/models"
)

const (
	chartHeight   = 360
	minChartWidth = 480
	barWidth      = 48
	barSpacing    = 24
	mapWidth      = 520
	mapHeight     = 560

	dotMin        = 3.0
	revenueDotMax = 28.0
	countDotMax   = 20.0

	annotatedPoints = 5
	noDataLabel     = "Sem dados"
)

// South America viewport for the state maps.
const (
	lonMin = -82.0
	lonMax = -34.0
	latMin = -56.0
	latMax = 13.0
)

var (
	palette = []drawing.Color{
		drawing.ColorFromHex("4c72b0"),
		drawing.ColorFromHex("dd8452"),
		drawing.ColorFromHex("55a868"),
		drawing.ColorFromHex("c44e52"),
		drawing.ColorFromHex("8172b3"),
		drawing.ColorFromHex("937860"),
		drawing.ColorFromHex("da8bc3"),
		drawing.ColorFromHex("8c8c8c"),
	}
	dashes = [][]float64{nil, {8, 4}, {2, 3}, {8, 3, 2, 3}}

	textColor   = drawing.ColorFromHex("333333")
	mapDotColor = drawing.ColorFromHex("4c72b0").WithAlpha(170)
)

var shortMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type geoPoint struct {
	label string
	lat   float64
	lon   float64
	value float64
}

func barChart(title string, bars []chart.Value, formatter chart.ValueFormatter) ([]byte, error) {
	if len(bars) == 0 {
		return placeholder(title)
	}

	top := 0.0
	for i := range bars {
		top = math.Max(top, bars[i].Value)
		color := palette[i%len(palette)]
		bars[i].Style = chart.Style{FillColor: color, StrokeColor: color}
	}
	if top <= 0 {
		top = 1
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 12, FontColor: textColor},
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Width:      max(minChartWidth, len(bars)*(barWidth+barSpacing)+120),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.Style{FontSize: 8, FontColor: textColor},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontSize: 8, FontColor: textColor},
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: formatter,
		},
		Bars: bars,
	}
	return render(graph)
}

// lineChart draws one line per year with months on the x axis.
func lineChart(title, yName string, months []models.MonthlyValue, formatter chart.ValueFormatter) ([]byte, error) {
	if len(months) == 0 {
		return placeholder(title)
	}

	type yearSeries struct {
		xs, ys []float64
	}
	var years []int
	byYear := make(map[int]*yearSeries)
	top := 0.0
	for _, m := range months {
		s := byYear[m.Year]
		if s == nil {
			s = &yearSeries{}
			byYear[m.Year] = s
			years = append(years, m.Year)
		}
		s.xs = append(s.xs, float64(m.Month))
		s.ys = append(s.ys, m.Value)
		top = math.Max(top, m.Value)
	}
	if top <= 0 {
		top = 1
	}

	series := make([]chart.Series, 0, len(years))
	for i, year := range years {
		color := palette[i%len(palette)]
		series = append(series, chart.ContinuousSeries{
			Name:    strconv.Itoa(year),
			XValues: byYear[year].xs,
			YValues: byYear[year].ys,
			Style: chart.Style{
				StrokeColor:     color,
				StrokeWidth:     2,
				StrokeDashArray: dashes[i%len(dashes)],
				DotColor:        color,
				DotWidth:        3,
			},
		})
	}

	ticks := make([]chart.Tick, 0, len(shortMonths))
	for i, label := range shortMonths {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: label})
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 12, FontColor: textColor},
		Width:      640,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Mês",
			Style: chart.Style{FontSize: 8, FontColor: textColor},
			Range: &chart.ContinuousRange{Min: 1, Max: 12},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:           yName,
			Style:          chart.Style{FontSize: 8, FontColor: textColor},
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: formatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return render(graph)
}

// geoChart draws a bubble map: one dot per state at its coordinates, with
// area proportional to the value.
func geoChart(title string, points []geoPoint, dotMax float64) ([]byte, error) {
	if len(points) == 0 {
		return placeholder(title)
	}

	top := 0.0
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.lon, p.lat
		top = math.Max(top, p.value)
	}

	size := func(_, _ chart.Range, index int, _, _ float64) float64 {
		if top <= 0 {
			return dotMin
		}
		return dotMin + (dotMax-dotMin)*math.Sqrt(points[index].value/top)
	}

	annotations := make([]chart.Value2, 0, annotatedPoints)
	for _, p := range points[:min(annotatedPoints, len(points))] {
		annotations = append(annotations, chart.Value2{XValue: p.lon, YValue: p.lat, Label: p.label})
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.Style{FontSize: 12, FontColor: textColor},
		Width:      mapWidth,
		Height:     mapHeight,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Longitude",
			Style:          chart.Style{FontSize: 8, FontColor: textColor},
			Range:          &chart.ContinuousRange{Min: lonMin, Max: lonMax},
			ValueFormatter: degreeFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Latitude",
			Style:          chart.Style{FontSize: 8, FontColor: textColor},
			Range:          &chart.ContinuousRange{Min: latMin, Max: latMax},
			ValueFormatter: degreeFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth:      chart.Disabled,
					DotColor:         mapDotColor,
					DotWidthProvider: size,
				},
			},
			chart.AnnotationSeries{
				Annotations: annotations,
				Style:       chart.Style{FontSize: 8, FontColor: textColor},
			},
		},
	}

	return render(graph)
}

// placeholder draws a titled empty frame for tables without rows.
func placeholder(title string) ([]byte, error) {
	r, err := chart.SVG(minChartWidth, chartHeight)
	if err != nil {
		return nil, err
	}

	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}
	r.SetFont(font)
	r.SetFontColor(textColor)

	r.SetFontSize(12)
	r.Text(title, 16, 28)

	r.SetFontSize(14)
	box := r.MeasureText(noDataLabel)
	r.Text(noDataLabel, (minChartWidth-box.Width())/2, chartHeight/2)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func revenueFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return format.Number(f, "")
	}
	return fmt.Sprint(v)
}

func countFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return fmt.Sprint(v)
}

func degreeFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', 0, 64) + "°"
	}
	return fmt.Sprint(v)
}

func revenuePoints(rows []models.StateRevenue) []geoPoint {
	out := make([]geoPoint, len(rows))
	for i, r := range rows {
		out[i] = geoPoint{label: r.State, lat: r.Lat, lon: r.Lon, value: r.Revenue}
	}
	return out
}

func countPoints(rows []models.StateCount) []geoPoint {
	out := make([]geoPoint, len(rows))
	for i, r := range rows {
		out[i] = geoPoint{label: r.State, lat: r.Lat, lon: r.Lon, value: float64(r.Count)}
	}
	return out
}

func stateRevenueBars(rows []models.StateRevenue) []chart.Value {
	out := make([]chart.Value, len(rows))
	for i, r := range rows {
		out[i] = chart.Value{Label: r.State, Value: r.Revenue}
	}
	return out
}

func stateCountBars(rows []models.StateCount) []chart.Value {
	out := make([]chart.Value, len(rows))
	for i, r := range rows {
		out[i] = chart.Value{Label: r.State, Value: float64(r.Count)}
	}
	return out
}

func categoryRevenueBars(rows []models.CategoryRevenue) []chart.Value {
	out := make([]chart.Value, len(rows))
	for i, r := range rows {
		out[i] = chart.Value{Label: r.Category, Value: r.Revenue}
	}
	return out
}

func categoryCountBars(rows []models.CategoryCount) []chart.Value {
	out := make([]chart.Value, len(rows))
	for i, r := range rows {
		out[i] = chart.Value{Label: r.Category, Value: float64(r.Count)}
	}
	return out
}

func sellerRevenueBars(rows []models.SellerSummary) []chart.Value {
	out := make([]chart.Value, len(rows))
	for i, r := range rows {
		out[i] = chart.Value{Label: r.Seller, Value: r.Revenue}
	}
	return out
}

func sellerCountBars(rows []models.SellerSummary) []chart.Value {
	out := make([]chart.Value, len(rows))
	for i, r := range rows {
		out[i] = chart.Value{Label: r.Seller, Value: float64(r.Count)}
	}
	return out
}
