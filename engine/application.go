package engine

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dletozeun/3D/engine/core"
	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position.
	PosX uint32 `toml:"pos_x"`
	PosY uint32 `toml:"pos_y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	VSync  bool   `toml:"vsync"`

	// ShowHelp displays the help overlay at startup.
	ShowHelp bool `toml:"show_help"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type AssetsConfig struct {
	// Dir is the assets root, relative to the working directory when not absolute.
	Dir string `toml:"dir"`

	// Watch reloads the shaders when their source changes on disk.
	Watch bool `toml:"watch"`
}

type ExposureConfig struct {
	// SeedLuminance is the luminance of the first frame.
	SeedLuminance float32 `toml:"seed_luminance"`
	// ShutterSpeed is the filter rate, in (0, 1].
	ShutterSpeed float32 `toml:"shutter_speed"`
	// HelpLuminance replaces the measured luminance while the help is shown.
	HelpLuminance float32 `toml:"help_luminance"`

	// StagingSize is the side of the square texture the frame is reduced to.
	StagingSize uint32 `toml:"staging_size"`
	// SampleInterval throttles the luminance measures, e.g. "100ms".
	SampleInterval string `toml:"sample_interval"`
}

// Interval parses SampleInterval.
func (c ExposureConfig) Interval() (time.Duration, error) {
	if c.SampleInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SampleInterval)
	if err != nil {
		return 0, fmt.Errorf("exposure sample_interval: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("exposure sample_interval %s is negative", d)
	}
	return d, nil
}

type PostProcessConfig struct {
	Enabled bool `toml:"enabled"`
}

type ApplicationConfig struct {
	Window      WindowConfig      `toml:"window"`
	Log         LogConfig         `toml:"log"`
	Assets      AssetsConfig      `toml:"assets"`
	Exposure    ExposureConfig    `toml:"exposure"`
	PostProcess PostProcessConfig `toml:"postprocess"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Window: WindowConfig{
			Name:     "HDRR demo",
			PosX:     100,
			PosY:     100,
			Width:    1024,
			Height:   768,
			VSync:    true,
			ShowHelp: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			Dir:   "assets",
			Watch: true,
		},
		Exposure: ExposureConfig{
			SeedLuminance:  100,
			ShutterSpeed:   0.1,
			HelpLuminance:  20,
			StagingSize:    64,
			SampleInterval: "100ms",
		},
		PostProcess: PostProcessConfig{
			Enabled: true,
		},
	}
}

// LoadConfig reads the TOML file at path over the defaults. Keys missing from
// the file keep their default value, unknown keys are an error.
func LoadConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*ApplicationConfig, error) {
	config := DefaultConfig()
	decoder := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("config %d:%d: %w", row, col, err)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			return nil, fmt.Errorf("config: %w\n%s", err, serr.String())
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if _, err := core.ParseLogLevel(c.Log.Level); err != nil {
		return err
	}
	if !(c.Exposure.ShutterSpeed > 0 && c.Exposure.ShutterSpeed <= 1) {
		return fmt.Errorf("exposure shutter_speed %v outside (0, 1]", c.Exposure.ShutterSpeed)
	}
	if c.Exposure.StagingSize == 0 {
		return errors.New("exposure staging_size must be positive")
	}
	if _, err := c.Exposure.Interval(); err != nil {
		return err
	}
	return nil
}
