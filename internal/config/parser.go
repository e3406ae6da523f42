package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"parallel-bench/internal/confidence"
	"parallel-bench/internal/logging"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

func LoadConfig(filepath string) (*BenchmarkConfig, error) {
	config, _, err := LoadConfigWithContent(filepath)
	return config, err
}

func LoadConfigWithContent(filepath string) (*BenchmarkConfig, string, error) {
	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read config file")
		return nil, "", err
	}

	originalContent := string(data)

	config, err := ParseConfig(originalContent)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse config file")
		return nil, "", err
	}

	return config, originalContent, nil
}

// ParseConfig expands ${VAR} references, decodes the YAML and validates it.
func ParseConfig(content string) (*BenchmarkConfig, error) {
	expanded := expandEnvVars(content)

	var config BenchmarkConfig
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

// ParseThreadSpec reads thread counts like "4", "1,2,4" or "1-4,8".
// Duplicates are dropped, first occurrence wins.
func ParseThreadSpec(spec string) ([]int, error) {
	var threads []int
	seen := make(map[int]bool)

	parts := strings.Split(spec, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid thread range: %s", part)
			}

			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid thread range start: %s", rangeParts[0])
			}

			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid thread range end: %s", rangeParts[1])
			}

			if start > end {
				return nil, fmt.Errorf("invalid thread range: start > end (%d > %d)", start, end)
			}
			if start < 1 {
				return nil, fmt.Errorf("invalid thread range: thread counts start at 1, got %d", start)
			}

			for i := start; i <= end; i++ {
				if !seen[i] {
					threads = append(threads, i)
					seen[i] = true
				}
			}
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid thread count: %s", part)
			}
			if n < 1 {
				return nil, fmt.Errorf("thread count must be positive, got %d", n)
			}

			if !seen[n] {
				threads = append(threads, n)
				seen[n] = true
			}
		}
	}

	if len(threads) == 0 {
		return nil, fmt.Errorf("no thread counts specified")
	}

	return threads, nil
}

func (o OptionsConfig) confidence() (confidence.Level, confidence.Method, confidence.Tendency, error) {
	level, method, tendency := confidence.Level90, confidence.RangeTrim, confidence.Mean
	var err error
	if o.ConfidenceLevel != "" {
		if level, err = confidence.ParseLevel(o.ConfidenceLevel); err != nil {
			return 0, 0, 0, err
		}
	}
	if o.Method != "" {
		if method, err = confidence.ParseMethod(o.Method); err != nil {
			return 0, 0, 0, err
		}
	}
	if o.Tendency != "" {
		if tendency, err = confidence.ParseTendency(o.Tendency); err != nil {
			return 0, 0, 0, err
		}
	}
	return level, method, tendency, nil
}

func validateConfig(config *BenchmarkConfig) error {
	if err := validate.Struct(config); err != nil {
		return err
	}

	for _, n := range config.Options.Threads {
		if n < 1 {
			return fmt.Errorf("thread count must be positive, got %d", n)
		}
	}

	if _, err := ParseSavePolicy(config.Options.Save); err != nil {
		return err
	}
	if _, _, _, err := config.Options.confidence(); err != nil {
		return err
	}

	for i, ds := range config.Datasets {
		if ds.Path == "" && ds.Generate == nil {
			return fmt.Errorf("dataset %d: either path or generate is required", i)
		}
		if ds.Generate == nil {
			continue
		}
		switch ds.Kind {
		case "array":
			if ds.Generate.Size <= 0 {
				return fmt.Errorf("dataset %d: generate.size must be greater than 0", i)
			}
		case "matrix":
			if ds.Generate.Rows <= 0 || ds.Generate.Cols <= 0 {
				return fmt.Errorf("dataset %d: generate.rows and generate.cols must be greater than 0", i)
			}
		case "text":
			if ds.Generate.Text == "" {
				return fmt.Errorf("dataset %d: generate.text must not be empty", i)
			}
		}
		if ds.Kind != "text" && ds.Generate.Fill == "random" && ds.Generate.Min > ds.Generate.Max {
			return fmt.Errorf("dataset %d: generate.min must not exceed generate.max", i)
		}
	}

	return nil
}
