// Package export writes analysis results to files: atom positions,
// displacement vectors and line profiles as CSV, summary statistics as JSON
// or plain text.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"stem-strain/internal/displacement"
	"stem-strain/internal/profile"
	"stem-strain/internal/stats"
	"stem-strain/pkg/geometry"
)

// WritePositionsCSV writes a point set as x,y rows with a header.
func WritePositionsCSV(path string, points geometry.PointSet) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"x", "y"}); err != nil {
			return err
		}
		for _, p := range points {
			if err := w.Write([]string{ftoa(p.X), ftoa(p.Y)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteDisplacementsCSV writes per-atom displacement rows aligned with the
// field's observed order. scale is the physical length of one pixel; pass 0
// to omit the physical-unit columns.
func WriteDisplacementsCSV(path string, f *displacement.Field, scale float64) error {
	return writeCSV(path, func(w *csv.Writer) error {
		header := []string{"x", "y", "dx_px", "dy_px"}
		if scale > 0 {
			header = append(header, "dx_phys", "dy_phys")
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for i, p := range f.Observed {
			row := []string{ftoa(p.X), ftoa(p.Y), ftoa(f.DX[i]), ftoa(f.DY[i])}
			if scale > 0 {
				row = append(row, ftoa(f.DX[i]*scale), ftoa(f.DY[i]*scale))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteProfileCSV writes a sampled line profile as distance,x,y,value rows.
// valueName labels the sampled quantity in the header.
func WriteProfileCSV(path string, line *profile.Line, valueName string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"distance", "x", "y", valueName}); err != nil {
			return err
		}
		for i := range line.Distances {
			row := []string{
				ftoa(line.Distances[i]),
				ftoa(line.Positions[i].X),
				ftoa(line.Positions[i].Y),
				ftoa(line.Values[i]),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSummaryJSON writes displacement statistics as indented JSON.
func WriteSummaryJSON(path string, s *stats.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// WriteSummaryText writes displacement statistics as a human-readable text
// report, one key per line.
func WriteSummaryText(path string, s *stats.Summary) error {
	var b strings.Builder
	b.WriteString("Displacement Statistics Summary\n")
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	fmt.Fprintf(&b, "count: %d\n", s.Count)
	fmt.Fprintf(&b, "magnitude_mean_px: %.6f\n", s.Magnitude.Mean)
	fmt.Fprintf(&b, "magnitude_std_px: %.6f\n", s.Magnitude.Std)
	fmt.Fprintf(&b, "magnitude_min_px: %.6f\n", s.Magnitude.Min)
	fmt.Fprintf(&b, "magnitude_max_px: %.6f\n", s.Magnitude.Max)
	fmt.Fprintf(&b, "magnitude_median_px: %.6f\n", s.Magnitude.Median)
	fmt.Fprintf(&b, "angle_mean_deg: %.6f\n", s.AngleMeanDeg)
	fmt.Fprintf(&b, "angle_std_deg: %.6f\n", s.AngleStdDeg)
	if p := s.MagnitudePhysical; p != nil {
		fmt.Fprintf(&b, "magnitude_mean_physical: %.6f\n", p.Mean)
		fmt.Fprintf(&b, "magnitude_std_physical: %.6f\n", p.Std)
		fmt.Fprintf(&b, "magnitude_min_physical: %.6f\n", p.Min)
		fmt.Fprintf(&b, "magnitude_max_physical: %.6f\n", p.Max)
		fmt.Fprintf(&b, "magnitude_median_physical: %.6f\n", p.Median)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func writeCSV(path string, fill func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := fill(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
