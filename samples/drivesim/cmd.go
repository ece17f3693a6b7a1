// Package main runs a scripted swerve drive over fake hardware and logs
// the odometry trail, optionally loading the drive geometry from a JSON
// config file.
package main

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/swerve/drive"
	"go.viam.com/swerve/drive/fake"
	"go.viam.com/swerve/kinematics"
	"go.viam.com/swerve/spatialmath"
)

var logger = golog.NewDevelopmentLogger("drivesim")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=drive config file"`
	StepTime   int    `flag:"step-time,default=2,usage=seconds to hold each scripted step"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cfg := defaultConfig()
	if argsParsed.ConfigFile != "" {
		data, err := os.ReadFile(argsParsed.ConfigFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return err
		}
	}
	if err := cfg.Validate("drivesim"); err != nil {
		return err
	}

	return runSim(ctx, cfg, argsParsed.StepTime, logger)
}

func defaultConfig() drive.Config {
	return drive.Config{
		Modules: []drive.ModuleConfig{
			{Name: "front-left", X: 0.3, Y: 0.3},
			{Name: "front-right", X: 0.3, Y: -0.3},
			{Name: "back-left", X: -0.3, Y: 0.3},
			{Name: "back-right", X: -0.3, Y: -0.3},
		},
		MaxSpeed:     2,
		UpdateRateMs: 20,
	}
}

func runSim(ctx context.Context, cfg drive.Config, stepSeconds int, logger golog.Logger) (err error) {
	fakes := make([]*fake.Module, 0, len(cfg.Modules))
	modules := make([]drive.Module, 0, len(cfg.Modules))
	for _, mc := range cfg.Modules {
		m := fake.NewModule(mc.Name)
		fakes = append(fakes, m)
		modules = append(modules, m)
	}
	gyro := fake.NewGyro()

	d, err := drive.New(ctx, cfg, drive.Params{
		Modules: modules,
		Gyro:    gyro,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, d.Close(ctx))
	}()

	d.StartTracking()

	steps := []struct {
		name   string
		speeds kinematics.ChassisSpeeds
		cor    r2.Point
	}{
		{"forward", kinematics.ChassisSpeeds{Vx: 1}, r2.Point{}},
		{"strafe left", kinematics.ChassisSpeeds{Vy: 1}, r2.Point{}},
		{"spin in place", kinematics.ChassisSpeeds{Omega: math.Pi / 4}, r2.Point{}},
		{"pivot about front-left", kinematics.ChassisSpeeds{Omega: math.Pi / 4}, r2.Point{X: cfg.Modules[0].X, Y: cfg.Modules[0].Y}},
		{"arc", kinematics.ChassisSpeeds{Vx: 0.5, Omega: math.Pi / 8}, r2.Point{}},
	}

	for _, step := range steps {
		logger.Infow("driving",
			"step", step.name,
			"vx", step.speeds.Vx,
			"vy", step.speeds.Vy,
			"omega", step.speeds.Omega,
		)
		if err := d.SetVelocityAbout(ctx, step.speeds, step.cor); err != nil {
			return err
		}
		if !utils.SelectContextOrWait(ctx, time.Duration(stepSeconds)*time.Second) {
			return ctx.Err()
		}

		// The fakes have no physics, so stand in for the gyro by
		// integrating the commanded turn over the step.
		heading, err := gyro.Heading(ctx)
		if err != nil {
			return err
		}
		gyro.SetHeading(heading.Add(spatialmath.NewRotation(step.speeds.Omega * float64(stepSeconds))))

		for _, m := range fakes {
			state := m.DesiredState()
			logger.Debugw("module", "name", m.Name(), "speed", state.Speed, "angle_deg", state.Angle.Degrees())
		}
		pose := d.Pose()
		logger.Infow("pose",
			"x", pose.Point().X,
			"y", pose.Point().Y,
			"heading_deg", pose.Heading().Degrees(),
		)
	}

	return d.Stop(ctx)
}
