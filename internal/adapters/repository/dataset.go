package repository

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/allocator/internal/domain/model"
)

// Dataset is the on-disk seed format for the memory store:
//
//	employees:
//	  - employee_id: 1
//	    name: Ada
//	    skill_python: 5
//	    ...
//	tasks:
//	  - task_id: 1
//	    title: Churn model
//	    required_python: 4
//	    ...
//
// Every employee row must carry the four skill_* keys, current_workload and
// availability. A task requirement that is absent means no requirement.
// Unknown keys and non-integral numbers are rejected.
type Dataset struct {
	Employees []model.Employee
	Tasks     []model.Task
}

// Numeric columns decode into *float64 so that absent keys and fractions
// can be told apart from real values.
type datasetFile struct {
	Employees []employeeRow `koanf:"employees"`
	Tasks     []taskRow     `koanf:"tasks"`
}

type employeeRow struct {
	ID              *float64 `koanf:"employee_id"`
	Name            string   `koanf:"name"`
	Role            string   `koanf:"role"`
	SkillPython     *float64 `koanf:"skill_python"`
	SkillML         *float64 `koanf:"skill_ml"`
	SkillBackend    *float64 `koanf:"skill_backend"`
	SkillFrontend   *float64 `koanf:"skill_frontend"`
	CurrentWorkload *float64 `koanf:"current_workload"`
	Availability    *float64 `koanf:"availability"`
}

type taskRow struct {
	ID               *float64 `koanf:"task_id"`
	Title            string   `koanf:"title"`
	RequiredPython   *float64 `koanf:"required_python"`
	RequiredML       *float64 `koanf:"required_ml"`
	RequiredBackend  *float64 `koanf:"required_backend"`
	RequiredFrontend *float64 `koanf:"required_frontend"`
}

// LoadDataset parses a YAML dataset file.
func LoadDataset(path string) (Dataset, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Dataset{}, fmt.Errorf("%w: %s: %w", ErrLoadDataset, path, err)
	}

	var raw datasetFile
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			ErrorUnused:      true,
			WeaklyTypedInput: false,
			Result:           &raw,
		},
	}
	if err := k.UnmarshalWithConf("", &raw, conf); err != nil {
		return Dataset{}, fmt.Errorf("%w: %s: %w: %w", ErrLoadDataset, path, model.ErrInvalidRecord, err)
	}

	ds, err := raw.records()
	if err != nil {
		return Dataset{}, fmt.Errorf("%w: %s: %w", ErrLoadDataset, path, err)
	}
	return ds, nil
}

func (f datasetFile) records() (Dataset, error) {
	ds := Dataset{
		Employees: make([]model.Employee, 0, len(f.Employees)),
		Tasks:     make([]model.Task, 0, len(f.Tasks)),
	}
	for i, row := range f.Employees {
		e, err := row.employee()
		if err != nil {
			return Dataset{}, fmt.Errorf("employees[%d]: %w", i, err)
		}
		ds.Employees = append(ds.Employees, e)
	}
	for i, row := range f.Tasks {
		t, err := row.task()
		if err != nil {
			return Dataset{}, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		ds.Tasks = append(ds.Tasks, t)
	}
	return ds, nil
}

func (r employeeRow) employee() (model.Employee, error) {
	e := model.Employee{Name: r.Name, Role: r.Role}
	id, err := integral("employee_id", r.ID, true)
	if err != nil {
		return model.Employee{}, err
	}
	e.ID = int64(id)

	fields := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{"skill_python", r.SkillPython, &e.SkillPython},
		{"skill_ml", r.SkillML, &e.SkillML},
		{"skill_backend", r.SkillBackend, &e.SkillBackend},
		{"skill_frontend", r.SkillFrontend, &e.SkillFrontend},
		{"current_workload", r.CurrentWorkload, &e.CurrentWorkload},
		{"availability", r.Availability, &e.Availability},
	}
	for _, f := range fields {
		v, err := integral(f.name, f.src, true)
		if err != nil {
			return model.Employee{}, fmt.Errorf("employee %d: %w", e.ID, err)
		}
		*f.dst = int(v)
	}
	return e, nil
}

func (r taskRow) task() (model.Task, error) {
	t := model.Task{Title: r.Title}
	id, err := integral("task_id", r.ID, true)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = int64(id)

	fields := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{"required_python", r.RequiredPython, &t.RequiredPython},
		{"required_ml", r.RequiredML, &t.RequiredML},
		{"required_backend", r.RequiredBackend, &t.RequiredBackend},
		{"required_frontend", r.RequiredFrontend, &t.RequiredFrontend},
	}
	for _, f := range fields {
		v, err := integral(f.name, f.src, false)
		if err != nil {
			return model.Task{}, fmt.Errorf("task %d: %w", t.ID, err)
		}
		*f.dst = int(v)
	}
	return t, nil
}

// integral returns v as a whole number. Optional absent values read as 0.
func integral(name string, v *float64, required bool) (float64, error) {
	if v == nil {
		if required {
			return 0, fmt.Errorf("%w: %s is missing", model.ErrInvalidRecord, name)
		}
		return 0, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || math.Trunc(*v) != *v {
		return 0, fmt.Errorf("%w: %s is not a whole number (%v)", model.ErrInvalidRecord, name, *v)
	}
	return *v, nil
}

// NewMemoryStoreFromFile loads a dataset and builds a MemoryStore from it.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	ds, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(WithEmployees(ds.Employees...), WithTasks(ds.Tasks...))
}
