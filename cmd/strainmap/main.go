// Command strainmap runs the full strain analysis on a STEM image and writes
// CSV, JSON and heatmap outputs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"stem-strain/internal/export"
	"stem-strain/internal/imaging"
	"stem-strain/internal/pipeline"
	"stem-strain/internal/profile"
	"stem-strain/internal/project"
	"stem-strain/internal/render"
	"stem-strain/internal/store"
	"stem-strain/internal/version"
	"stem-strain/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to STEM image (TIFF, PNG, or JPEG)")
	projectPath := flag.String("project", "", "Path to a .strainproj file supplying image and parameters")
	separation := flag.Float64("separation", 0, "Lattice separation in pixels (0 = estimate from FFT)")
	threshold := flag.Float64("threshold", 0.1, "Relative peak detection threshold")
	scale := flag.Float64("scale", 0, "Physical length per pixel, e.g. nm/px (0 = pixels only)")
	smoothSigma := flag.Float64("smooth", 1.0, "Preprocessing gaussian sigma in pixels")
	bgSigma := flag.Float64("background", 0, "Background removal sigma in pixels (0 = off)")
	outDir := flag.String("out", "strainmap-out", "Output directory")
	dbPath := flag.String("db", "", "Optional SQLite database to record the run in")
	profileLine := flag.String("profile", "", "Sample displacement magnitude along a line, as x0,y0,x1,y1 in pixels")
	plots := flag.Bool("plots", true, "Write strain heatmaps, histogram and overlay")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("strainmap %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
		return
	}

	if *projectPath != "" {
		proj, err := project.Load(*projectPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load project: %v\n", err)
			os.Exit(1)
		}
		applyProject(proj, *projectPath, map[string]*float64{
			"separation": separation,
			"threshold":  threshold,
			"scale":      scale,
			"smooth":     smoothSigma,
			"background": bgSigma,
		}, map[string]*string{
			"image": imagePath,
			"out":   outDir,
			"db":    dbPath,
		})
		fmt.Printf("Project: %s\n", proj.Name)
	}

	if *imagePath == "" {
		fmt.Println("Usage: strainmap -image <path> [-separation 10] [-threshold 0.1] [-scale 0.05] [-out dir]")
		os.Exit(1)
	}

	frame, err := imaging.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", frame.Width, frame.Height)

	opts := pipeline.DefaultOptions()
	opts.Separation = *separation
	opts.PeakThreshold = *threshold
	opts.Scale = *scale
	opts.Preprocess.GaussianSigma = *smoothSigma
	opts.Preprocess.BackgroundSigma = *bgSigma
	opts.Events = func(e pipeline.Event) {
		fmt.Printf("warning: %s: %s\n", e.Kind, e.Message)
	}

	res, err := pipeline.Run(frame, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Lattice separation: %.2f px\n", res.Separation)
	fmt.Printf("Sublattice A: %d atoms, %d zone axes\n", len(res.SublatticeA.Positions), len(res.SublatticeA.ZoneAxes))
	fmt.Printf("Sublattice B: %d atoms\n", len(res.RefinedB))
	fmt.Printf("Displacement magnitude: mean %.4f px, median %.4f px, max %.4f px\n",
		res.Summary.Magnitude.Mean, res.Summary.Magnitude.Median, res.Summary.Magnitude.Max)
	fmt.Printf("Mean direction: %.1f deg (circular std %.1f deg)\n", res.Summary.AngleMeanDeg, res.Summary.AngleStdDeg)
	if res.Summary.MagnitudePhysical != nil {
		fmt.Printf("Physical magnitude mean: %.4f\n", res.Summary.MagnitudePhysical.Mean)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output dir: %v\n", err)
		os.Exit(1)
	}

	type output struct {
		name string
		fn   func() error
	}
	outputs := []output{
		{"positions_a.csv", func() error {
			return export.WritePositionsCSV(filepath.Join(*outDir, "positions_a.csv"), res.SublatticeA.Positions)
		}},
		{"displacements.csv", func() error {
			return export.WriteDisplacementsCSV(filepath.Join(*outDir, "displacements.csv"), res.Displacement, *scale)
		}},
		{"summary.json", func() error {
			return export.WriteSummaryJSON(filepath.Join(*outDir, "summary.json"), res.Summary)
		}},
		{"summary.txt", func() error {
			return export.WriteSummaryText(filepath.Join(*outDir, "summary.txt"), res.Summary)
		}},
	}
	if *profileLine != "" {
		start, end, err := parseLine(*profileLine)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -profile value: %v\n", err)
			os.Exit(1)
		}
		line, err := profile.Compute(res.Displacement.Observed, res.Displacement.Magnitudes(), start, end, profile.DefaultOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to compute line profile: %v\n", err)
			os.Exit(1)
		}
		outputs = append(outputs, output{"profile.csv", func() error {
			return export.WriteProfileCSV(filepath.Join(*outDir, "profile.csv"), line, "magnitude_px")
		}})
		if *plots {
			outputs = append(outputs, output{"profile.png", func() error {
				return render.SaveLineProfile(line, "displacement magnitude (px)", *scale, filepath.Join(*outDir, "profile.png"))
			}})
		}
	}
	if *plots {
		for _, c := range []string{render.ComponentExx, render.ComponentEyy, render.ComponentExy, render.ComponentRotation} {
			component := c
			outputs = append(outputs, output{component + ".png", func() error {
				return render.SaveHeatmap(res.Strain, component, filepath.Join(*outDir, component+".png"))
			}})
		}
		outputs = append(outputs,
			output{"histogram.png", func() error {
				return render.SaveMagnitudeHistogram(res.Displacement.DX, res.Displacement.DY, 24, filepath.Join(*outDir, "histogram.png"))
			}},
			output{"overlay.png", func() error {
				return render.SaveOverlay(frame, res.Displacement, 20, filepath.Join(*outDir, "overlay.png"))
			}},
		)
	}

	for _, out := range outputs {
		if err := out.fn(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", out.name, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", filepath.Join(*outDir, out.name))
	}

	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		id, err := db.SaveRun(store.Run{
			ImagePath:  *imagePath,
			Separation: res.Separation,
			AtomCountA: len(res.SublatticeA.Positions),
			AtomCountB: len(res.RefinedB),
			Summary:    res.Summary,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record run: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Recorded run %s in %s\n", id, *dbPath)
	}
}

// parseLine parses a -profile value of the form x0,y0,x1,y1.
func parseLine(s string) (geometry.Point2D, geometry.Point2D, error) {
	var x0, y0, x1, y1 float64
	if n, err := fmt.Sscanf(s, "%f,%f,%f,%f", &x0, &y0, &x1, &y1); err != nil || n != 4 {
		return geometry.Point2D{}, geometry.Point2D{}, fmt.Errorf("want x0,y0,x1,y1, got %q", s)
	}
	return geometry.NewPoint2D(x0, y0), geometry.NewPoint2D(x1, y1), nil
}

// applyProject copies project values into flags the user did not set
// explicitly on the command line.
func applyProject(proj *project.File, projPath string, floats map[string]*float64, strings map[string]*string) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(name string, dst *float64, v float64) {
		if !set[name] && v != 0 {
			*dst = v
		}
	}
	apply("separation", floats["separation"], proj.Separation)
	apply("threshold", floats["threshold"], proj.PeakThreshold)
	apply("scale", floats["scale"], proj.Scale)
	apply("smooth", floats["smooth"], proj.SmoothSigma)
	apply("background", floats["background"], proj.BackgroundSigma)

	if !set["image"] && proj.ImagePath != "" {
		*strings["image"] = proj.GetImagePath(projPath)
	}
	if !set["out"] {
		*strings["out"] = proj.GetOutputDir(projPath)
	}
	if !set["db"] && proj.DatabasePath != "" {
		*strings["db"] = proj.GetDatabasePath(projPath)
	}
}
