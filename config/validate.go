package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"cutter/command/video"
	"cutter/pvr"
)

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var problems []string

	// Struct tags cover required fields and enumerations
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		for _, e := range verrs {
			problems = append(problems, describeFieldError(e))
		}
	}

	// Local input files must exist; PVR URLs are resolved at run time
	if c.Input != "" && !pvr.IsRecordingURL(c.Input) {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("input file does not exist: %s", c.Input))
		}
	}

	if pvr.IsRecordingURL(c.Input) && c.PVR.URL == "" {
		problems = append(problems, "pvr url is required for pvr:// input")
	}

	if c.StreamMode == "explicit" && len(c.Streams) == 0 {
		problems = append(problems, "explicit stream mode needs at least one stream index")
	}

	if c.DeleteOriginal && c.DryRun {
		problems = append(problems, "delete_original cannot be combined with dry_run")
	}

	if err := c.Video.Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("video config: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	return nil
}

// Validate checks if video configuration is valid
func (vc *VideoConfig) Validate() error {
	return vc.Policy().Validate()
}

// Policy converts the video settings into a codec policy
func (vc *VideoConfig) Policy() video.Policy {
	return video.DefaultPolicy().
		SetMode(video.Mode(vc.Mode)).
		SetPreset(vc.Preset).
		SetTune(vc.Tune)
}

func describeFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("invalid %s '%v', must be one of: %s",
			field, e.Value(), strings.Join(strings.Fields(e.Param()), ", "))
	case "min":
		return fmt.Sprintf("%s cannot be negative", field)
	case "url":
		return fmt.Sprintf("%s is not a valid URL: %v", field, e.Value())
	default:
		return fmt.Sprintf("%s failed %s check", field, e.Tag())
	}
}
