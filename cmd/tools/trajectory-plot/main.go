// Command trajectory-plot computes a trajectory from exported tracker
// snapshot files and writes an ECharts HTML plot, for eyeballing gap fill
// and smoothing offline without running the server.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/victorzhrn/swingmaster/internal/analyzer"
	"github.com/victorzhrn/swingmaster/internal/pose"
	"github.com/victorzhrn/swingmaster/internal/source"
	"github.com/victorzhrn/swingmaster/internal/trajectory"
)

var (
	videoPath = flag.String("video", "", "Video path (expects sibling .poses.jsonl / .objects.jsonl exports)")
	kind      = flag.String("kind", "racket", "Entity kind: racket, ball, or joint")
	jointName = flag.String("joint", "right_wrist", "Joint name when -kind=joint")
	output    = flag.String("out", "trajectory.html", "Output HTML file")
	noSmooth  = flag.Bool("no-smooth", false, "Disable local-polynomial smoothing")
)

func main() {
	flag.Parse()
	if *videoPath == "" {
		log.Fatal("missing -video")
	}

	entity := trajectory.Entity{Kind: trajectory.Kind(*kind)}
	if entity.Kind == trajectory.KindJoint {
		joint, ok := pose.ParseJoint(*jointName)
		if !ok {
			log.Fatalf("unknown joint %q", *jointName)
		}
		entity.Joint = joint
	}

	ctx := context.Background()
	video := analyzer.Video{Path: *videoPath}
	src := source.FileSource{}

	var poseFrames []pose.Snapshot
	for snap := range src.StreamPoses(ctx, video) {
		poseFrames = append(poseFrames, snap)
	}
	var objectFrames []pose.ObjectSnapshot
	for snap := range src.StreamObjects(ctx, video) {
		objectFrames = append(objectFrames, snap)
	}
	if len(poseFrames) == 0 && len(objectFrames) == 0 {
		log.Fatalf("no snapshots found for %s", *videoPath)
	}

	opts2 := trajectory.DefaultOptions()
	if *noSmooth {
		opts2.Smooth = false
	}
	points := trajectory.Compute(entity, poseFrames, objectFrames, 0, opts2)
	if len(points) == 0 {
		log.Fatal("no trajectory points")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Trajectory", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectory", Subtitle: *videoPath}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: 1, Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "Y"}),
	)

	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		data = append(data, opts.LineData{Value: []interface{}{p.Position.X, 1 - p.Position.Y}})
	}
	line.AddSeries("path", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		log.Fatalf("render chart: %v", err)
	}
	log.Printf("wrote %s (%d points)", *output, len(points))
}
