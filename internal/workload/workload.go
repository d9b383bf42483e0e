// Package workload reads task lists from YAML or TOML files and generates
// random ones, turning them into sched.Tasks.
package workload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "github.com/goccy/go-yaml"
	"github.com/google/uuid"

	"prioq/internal/sched"
)

// Format is a workload file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	ErrNoTasks           = errors.New("workload has no tasks")
	ErrUnsupportedFormat = errors.New("unsupported workload format")
)

// DuplicateIDError is returned when two tasks share an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate task id %q", e.ID)
}

// InvalidTaskError is returned when a task spec can't be scheduled.
type InvalidTaskError struct {
	Index  int
	ID     string
	Reason string
}

func (e *InvalidTaskError) Error() string {
	return fmt.Sprintf("task #%d (%s): %s", e.Index, e.ID, e.Reason)
}

// TaskSpec is the on-disk (and on-the-wire) shape of a task.
type TaskSpec struct {
	ID            string   `yaml:"id,omitempty" toml:"id,omitempty" json:"id,omitempty"`
	Priority      int      `yaml:"priority" toml:"priority" json:"priority"`
	ArrivalTime   float64  `yaml:"arrival_time" toml:"arrival_time" json:"arrival_time"`
	Deadline      *float64 `yaml:"deadline,omitempty" toml:"deadline,omitempty" json:"deadline,omitempty"`
	ExecutionTime *float64 `yaml:"execution_time,omitempty" toml:"execution_time,omitempty" json:"execution_time,omitempty"`
	Description   string   `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
}

// File is a workload document.
type File struct {
	Tasks []TaskSpec `yaml:"tasks" toml:"tasks" json:"tasks"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads a workload file and builds its tasks.
func Load(path string) ([]*sched.Task, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workload: %w", err)
	}
	defer f.Close()

	file, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file.BuildTasks()
}

// Decode parses a workload document without validating it.
func Decode(r io.Reader, format Format) (File, error) {
	var file File
	data, err := io.ReadAll(r)
	if err != nil {
		return file, fmt.Errorf("read workload: %w", err)
	}

	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&file)
	default:
		return file, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return file, fmt.Errorf("decode %s: %w", format, err)
	}
	return file, nil
}

// Encode writes a workload document.
func Encode(w io.Writer, file File, format Format) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(file)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatTOML:
		return toml.NewEncoder(w).Encode(file)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// BuildTasks validates the document and builds one task per spec, in order.
// Specs without an id get a random UUID.
func (f File) BuildTasks() ([]*sched.Task, error) {
	if len(f.Tasks) == 0 {
		return nil, ErrNoTasks
	}

	seen := make(map[string]struct{}, len(f.Tasks))
	tasks := make([]*sched.Task, 0, len(f.Tasks))
	for i, spec := range f.Tasks {
		if spec.ID == "" {
			spec.ID = uuid.NewString()
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, &DuplicateIDError{ID: spec.ID}
		}
		seen[spec.ID] = struct{}{}

		t, err := spec.task()
		if err != nil {
			return nil, &InvalidTaskError{Index: i, ID: spec.ID, Reason: err.Error()}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s TaskSpec) task() (*sched.Task, error) {
	if !finite(s.ArrivalTime) {
		return nil, errors.New("arrival_time must be finite")
	}
	if s.Deadline != nil && !finite(*s.Deadline) {
		return nil, errors.New("deadline must be finite")
	}
	if s.ExecutionTime != nil && !finite(*s.ExecutionTime) {
		return nil, errors.New("execution_time must be finite")
	}

	opts := []sched.TaskOption{sched.WithDescription(s.Description)}
	if s.ExecutionTime != nil {
		if *s.ExecutionTime < 0 {
			return nil, errors.New("execution_time must be >= 0")
		}
		opts = append(opts, sched.WithExecutionTime(*s.ExecutionTime))
	}
	if s.Deadline != nil {
		opts = append(opts, sched.WithDeadline(*s.Deadline))
	}
	return sched.NewTask(s.ID, s.Priority, s.ArrivalTime, opts...), nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
