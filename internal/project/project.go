// Package project provides analysis project file handling and persistence.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// File represents a strain analysis project file (.strainproj). It records
// the frame to analyze and the analysis parameters so a run can be repeated
// without retyping flags.
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Image path, relative to the project file.
	ImagePath string `json:"image,omitempty"`

	// Analysis parameters. Separation 0 means estimate from the FFT.
	Separation    float64 `json:"separation,omitempty"`
	PeakThreshold float64 `json:"peak_threshold,omitempty"`
	Scale         float64 `json:"scale,omitempty"`

	// Preprocessing.
	SmoothSigma     float64 `json:"smooth_sigma,omitempty"`
	BackgroundSigma float64 `json:"background_sigma,omitempty"`

	// Output locations, relative to the project file.
	OutputDir    string `json:"output_dir,omitempty"`
	DatabasePath string `json:"database,omitempty"`
}

// New creates a new project file with default analysis settings.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:       1,
		Name:          name,
		Created:       now,
		Modified:      now,
		PeakThreshold: 0.1,
		SmoothSigma:   1.0,
		OutputDir:     name + "-out",
	}
}

// Load loads a project from a .strainproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, err
	}

	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SetImage sets the image path (relative to the project file when possible).
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// GetImagePath returns the absolute path to the frame image.
func (p *File) GetImagePath(projectPath string) string {
	return p.resolve(projectPath, p.ImagePath)
}

// GetOutputDir returns the absolute output directory, defaulting to a
// directory named after the project file.
func (p *File) GetOutputDir(projectPath string) string {
	if p.OutputDir == "" {
		base := projectPath[:len(projectPath)-len(filepath.Ext(projectPath))]
		return base + "-out"
	}
	return p.resolve(projectPath, p.OutputDir)
}

// GetDatabasePath returns the absolute run-database path, or empty when the
// project does not record runs.
func (p *File) GetDatabasePath(projectPath string) string {
	return p.resolve(projectPath, p.DatabasePath)
}

func (p *File) resolve(projectPath, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(projectPath), path)
}
