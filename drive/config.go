package drive

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ModuleConfig describes one swerve module: its name and the position of
// its wheel relative to the robot center, +X forward and +Y left, in the
// same distance unit as module speeds.
type ModuleConfig struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Config is how you configure a swerve drive.
type Config struct {
	Modules []ModuleConfig `json:"modules"`
	// MaxSpeed is the highest wheel speed a module can attain. Commanded
	// states are normalized so no module is asked for more.
	MaxSpeed float64 `json:"max_speed"`
	// UpdateRateMs is how often the background tracking loop folds module
	// feedback into the pose. Zero means the default of 20ms.
	UpdateRateMs int `json:"update_rate_ms"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	if len(cfg.Modules) < 2 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("need at least two modules, got %d", len(cfg.Modules)))
	}
	for i, module := range cfg.Modules {
		if module.Name == "" {
			return utils.NewConfigValidationFieldRequiredError(
				fmt.Sprintf("%s.modules.%d", path, i), "name")
		}
	}
	if cfg.MaxSpeed <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "max_speed")
	}
	if cfg.UpdateRateMs < 0 {
		return utils.NewConfigValidationError(path,
			errors.New("update_rate_ms cannot be negative"))
	}
	return nil
}

// Params bundles the collaborators a Drive needs beyond its Config.
type Params struct {
	// Modules is the hardware, in the same order as Config.Modules.
	Modules []Module
	// Gyro supplies the robot's field heading.
	Gyro Gyro
	// Logger is the logger to use for tracking loop failures.
	Logger golog.Logger
	// Clock is the time source for odometry timestamps. If unset the wall
	// clock is used; tests substitute a mock.
	Clock clock.Clock
}

// Validate validates that p contains all required parameters.
func (p Params) Validate() error {
	if len(p.Modules) == 0 {
		return errors.New("missing required parameter modules")
	}
	if p.Gyro == nil {
		return errors.New("missing required parameter gyro")
	}
	if p.Logger == nil {
		return errors.New("missing required parameter logger")
	}
	return nil
}
