package allocator

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// DefaultGroupPenalty is subtracted from a group-requirement student's
// happiness for every group they have not covered yet.
const DefaultGroupPenalty = 1000

// defaultRewardTable holds the happiness reward per granted rank. Ranks past
// the end of the table are worth nothing.
var defaultRewardTable = []int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

type Configuration struct {
	StudentsFile      string  `yaml:"students_file"`
	CoursesFile       string  `yaml:"courses_file"`
	CourseGroupsFile  string  `yaml:"coursegroups_file"`
	ExportFile        string  `yaml:"export_file"`
	CoursesExportFile string  `yaml:"courses_export_file"`
	Seed              int64   `yaml:"seed"` // 0 seeds from the clock
	Rewards           []int   `yaml:"rewards"`
	GroupPenalty      int     `yaml:"group_penalty"`
	Logging           Logging `yaml:"logging"`
	TraceFile         string  `yaml:"trace_file"`
	DatabaseFile      string  `yaml:"database_file"`
	UploadDir         string  `yaml:"upload_dir"`
	ServerPort        string  `yaml:"server_port"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		StudentsFile:      "./res/students.csv",
		CoursesFile:       "./res/courses.csv",
		CourseGroupsFile:  "./res/coursegroups.csv",
		ExportFile:        "allocations.csv",
		CoursesExportFile: "courses-out.csv",
		Rewards:           append([]int(nil), defaultRewardTable...),
		GroupPenalty:      DefaultGroupPenalty,
		Logging:           Logging{Level: "info", Pretty: true},
		DatabaseFile:      "db/allocations.db",
		UploadDir:         "db/uploads",
		ServerPort:        "3001",
	}
}

// LoadConfiguration starts from the defaults, overlays the YAML file at path
// when it exists and then ALLOC_* environment variables.
func LoadConfiguration(path string) (*Configuration, error) {
	cfg := NewDefaultConfiguration()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Configuration) loadFromEnv() error {
	overrideString(&c.StudentsFile, "ALLOC_STUDENTS_FILE")
	overrideString(&c.CoursesFile, "ALLOC_COURSES_FILE")
	overrideString(&c.CourseGroupsFile, "ALLOC_COURSEGROUPS_FILE")
	overrideString(&c.ExportFile, "ALLOC_EXPORT_FILE")
	overrideString(&c.CoursesExportFile, "ALLOC_COURSES_EXPORT_FILE")
	overrideString(&c.TraceFile, "ALLOC_TRACE_FILE")
	overrideString(&c.DatabaseFile, "ALLOC_DATABASE_FILE")
	overrideString(&c.UploadDir, "ALLOC_UPLOAD_DIR")
	overrideString(&c.ServerPort, "ALLOC_SERVER_PORT")
	overrideString(&c.Logging.Level, "ALLOC_LOG_LEVEL")
	if v, ok := os.LookupEnv("ALLOC_LOG_PRETTY"); ok && v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: ALLOC_LOG_PRETTY: %v", ErrInvalidConfiguration, err)
		}
		c.Logging.Pretty = pretty
	}
	if v, ok := os.LookupEnv("ALLOC_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ALLOC_SEED: %v", ErrInvalidConfiguration, err)
		}
		c.Seed = seed
	}
	return nil
}

func overrideString(field *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*field = v
	}
}

// Validate checks the happiness parameters.
func (c *Configuration) Validate() error {
	return ValidateRewards(c.Rewards, c.GroupPenalty)
}

// ValidateRewards checks a reward table against a group penalty. Rewards
// must be non-negative and strictly decreasing until they reach zero, and the
// penalty must exceed the sum of all rewards so that one unmet group
// outweighs any set of granted preferences.
func ValidateRewards(rewards []int, groupPenalty int) error {
	sum := 0
	for i, r := range rewards {
		if r < 0 {
			return fmt.Errorf("%w: reward for rank %d is negative", ErrInvalidConfiguration, i+1)
		}
		if i > 0 {
			prev := rewards[i-1]
			if (prev > 0 && r >= prev) || (prev == 0 && r != 0) {
				return fmt.Errorf("%w: reward for rank %d does not decrease", ErrInvalidConfiguration, i+1)
			}
		}
		sum += r
	}
	if groupPenalty <= sum {
		return fmt.Errorf("%w: group penalty %d must exceed total reward %d", ErrInvalidConfiguration, groupPenalty, sum)
	}
	return nil
}
