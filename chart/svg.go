package chart

import (
	"fmt"
	"strings"
	"time"
)

const (
	svgWidth     = 860.0
	svgHeight    = 420.0
	marginTop    = 40.0
	marginRight  = 140.0
	marginBottom = 50.0
	marginLeft   = 70.0
)

var linePalette = []string{"#377eb8", "#e41a1c", "#4daf4a", "#ff7f00", "#984ea3", "#a65628"}

// RenderLineSVG draws a LineSpec as a standalone SVG document: one
// polyline per series over a shared date axis, with ticks and a legend.
func RenderLineSVG(spec LineSpec) string {
	plotW := svgWidth - marginLeft - marginRight
	plotH := svgHeight - marginTop - marginBottom

	var tmin, tmax time.Time
	var vmin, vmax float64
	first := true
	for _, s := range spec.Series {
		for _, p := range s.Points {
			v := float64(p.Value)
			if first {
				tmin, tmax, vmin, vmax = p.Date, p.Date, v, v
				first = false
				continue
			}
			if p.Date.Before(tmin) {
				tmin = p.Date
			}
			if p.Date.After(tmax) {
				tmax = p.Date
			}
			if v < vmin {
				vmin = v
			}
			if v > vmax {
				vmax = v
			}
		}
	}
	if first {
		tmin = time.Unix(0, 0).UTC()
		tmax = tmin.AddDate(0, 0, 1)
	}

	tspan := tmax.Sub(tmin)
	if tspan == 0 {
		tspan = 24 * time.Hour
	}
	vspan := vmax - vmin
	if vspan == 0 {
		vspan = 1
	}
	vmin -= vspan * 0.05
	vmax += vspan * 0.05
	vspan = vmax - vmin

	sx := func(t time.Time) float64 {
		return marginLeft + float64(t.Sub(tmin))/float64(tspan)*plotW
	}
	sy := func(v float64) float64 {
		return marginTop + plotH - (v-vmin)/vspan*plotH
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, int(svgWidth), int(svgHeight)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#ffffff"/>`, int(svgWidth), int(svgHeight)))

	if spec.Options.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="25" text-anchor="middle" font-family="sans-serif" font-size="16">%s</text>`,
			svgWidth/2, escape(spec.Options.Title)))
	}

	// axes
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1.5"/>`,
		marginLeft, marginTop, marginLeft, marginTop+plotH))
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1.5"/>`,
		marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH))

	const ticks = 5
	for i := 0; i <= ticks; i++ {
		t := tmin.Add(time.Duration(float64(tspan) * float64(i) / ticks))
		px := sx(t)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="10">%s</text>`,
			px, marginTop+plotH+18, t.Format("Jan 02")))

		v := vmin + vspan*float64(i)/ticks
		py := sy(v)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end" font-family="sans-serif" font-size="10">%.0f</text>`,
			marginLeft-8, py+4, v))
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#ddd" stroke-width="0.5"/>`,
			marginLeft, py, marginLeft+plotW, py))
	}

	for i, s := range spec.Series {
		if len(s.Points) == 0 {
			continue
		}
		color := linePalette[i%len(linePalette)]
		var points []string
		for _, p := range s.Points {
			points = append(points, fmt.Sprintf("%.1f,%.1f", sx(p.Date), sy(float64(p.Value))))
		}
		sb.WriteString(fmt.Sprintf(`<polyline points="%s" stroke="%s" stroke-width="2" fill="none"/>`,
			strings.Join(points, " "), color))

		legendY := marginTop + 12 + float64(i)*18
		legendX := marginLeft + plotW + 12
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`,
			legendX, legendY, legendX+20, legendY, color))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="10">%s</text>`,
			legendX+25, legendY+4, escape(s.Label)))
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return escaper.Replace(s)
}
