package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// trajectoryChart renders a quick scatter plot (HTML) of a stored segment's
// trajectory using go-echarts. This is a debugging-only endpoint to eyeball
// gap fill and smoothing output without a frontend. Same query parameters as
// /api/trajectory.
func (s *Server) trajectoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	points, seg, status, msg := s.segmentTrajectory(r)
	if status != http.StatusOK {
		s.writeJSONError(w, status, msg)
		return
	}
	if len(points) == 0 {
		s.writeJSONError(w, http.StatusNotFound, "No trajectory points for segment")
		return
	}

	observed := make([]opts.ScatterData, 0, len(points))
	interpolated := make([]opts.ScatterData, 0)
	power := make([]opts.ScatterData, 0)
	for _, p := range points {
		// Flip Y so the chart reads like the video frame.
		d := opts.ScatterData{Value: []interface{}{p.Position.X, 1 - p.Position.Y}}
		switch {
		case p.IsPowerSpot:
			power = append(power, d)
		case p.Interpolated:
			interpolated = append(interpolated, d)
		default:
			observed = append(observed, d)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Segment Trajectory", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Segment Trajectory",
			Subtitle: fmt.Sprintf("segment=%d type=%s points=%d", seg.SegmentID, seg.Type, len(points)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: 1, Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "Y"}),
	)

	scatter.AddSeries("observed", observed, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	scatter.AddSeries("interpolated", interpolated, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("power spots", power, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
