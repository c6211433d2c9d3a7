package deploy

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"newsctl/internal/runner"
)

// Report is the YAML document written by deploy --report.
type Report struct {
	Generated string         `yaml:"generated"`
	Host      string         `yaml:"host"`
	RemoteDir string         `yaml:"remote_dir"`
	Service   string         `yaml:"service"`
	Success   bool           `yaml:"success"`
	Error     string         `yaml:"error,omitempty"`
	Steps     []ReportResult `yaml:"steps"`
}

// ReportResult records one step.
type ReportResult struct {
	Step     string `yaml:"step"`
	Command  string `yaml:"command"`
	ExitCode int    `yaml:"exit_code"`
	Duration string `yaml:"duration"`
	Error    string `yaml:"error,omitempty"`
	Output   string `yaml:"output"`
}

// NewReport summarizes a deployment. The failing step carries the error text.
func NewReport(now time.Time, target Target, results []runner.StepResult, deployErr error) *Report {
	r := &Report{
		Generated: now.Format(time.RFC3339),
		Host:      target.Host,
		RemoteDir: target.Dir,
		Service:   target.Service,
		Success:   deployErr == nil,
		Steps:     make([]ReportResult, 0, len(results)),
	}
	if deployErr != nil {
		r.Error = deployErr.Error()
	}
	failed := FailedStep(deployErr)
	for _, res := range results {
		entry := ReportResult{
			Step:     res.Step,
			Command:  res.Command,
			ExitCode: res.ExitCode,
			Duration: res.Duration.Round(time.Millisecond).String(),
			Output:   string(res.Output),
		}
		if deployErr != nil && res.Step == failed {
			entry.Error = deployErr.Error()
		}
		r.Steps = append(r.Steps, entry)
	}
	return r
}

// Write serializes the report with two-space indentation.
func (r *Report) Write(w io.Writer) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile writes the report to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := r.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
