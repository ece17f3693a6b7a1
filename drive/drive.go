// Package drive glues swerve kinematics and odometry onto module and gyro
// hardware: it fans chassis velocity commands out to the modules and runs a
// background loop folding their feedback into a field pose.
package drive

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/swerve/kinematics"
	"go.viam.com/swerve/spatialmath"
	swerveutils "go.viam.com/swerve/utils"
)

// defaultUpdateRate is the odometry tracking period used when the config
// does not set one.
const defaultUpdateRate = 20 * time.Millisecond

// A Module is one independently steered, independently driven wheel.
// Implementations are expected to run their own closed loop control toward
// the desired state.
type Module interface {
	// SetDesiredState commands the module's wheel speed and azimuth.
	SetDesiredState(ctx context.Context, state kinematics.SwerveModuleState) error
	// State reports the measured wheel speed and azimuth.
	State(ctx context.Context) (kinematics.SwerveModuleState, error)
	// Stop brings the wheel to rest without changing its azimuth.
	Stop(ctx context.Context) error
}

// A Gyro reports the robot's field heading. Counterclockwise is positive;
// the zero reference is arbitrary since odometry offsets it away.
type Gyro interface {
	Heading(ctx context.Context) (spatialmath.Rotation, error)
}

// Drive commands a set of swerve modules as a single chassis and tracks
// the resulting field relative pose. All methods are safe for concurrent
// use; kinematics and odometry access is serialized internally.
type Drive struct {
	modules    []Module
	gyro       Gyro
	maxSpeed   float64
	updateRate time.Duration
	clock      clock.Clock
	logger     golog.Logger

	mu         sync.Mutex
	kinematics *kinematics.SwerveDriveKinematics
	odometry   *kinematics.SwerveDriveOdometry

	trackingDone            func()
	activeBackgroundWorkers sync.WaitGroup
}

// New builds a Drive from its config and collaborators. The gyro is read
// once so odometry starts at the origin facing positive X regardless of
// what the gyro happens to report.
func New(ctx context.Context, cfg Config, params Params) (*Drive, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(params.Modules) != len(cfg.Modules) {
		return nil, errors.Errorf("config names %d modules but %d were provided",
			len(cfg.Modules), len(params.Modules))
	}

	positions := make([]r2.Point, 0, len(cfg.Modules))
	for _, module := range cfg.Modules {
		positions = append(positions, r2.Point{X: module.X, Y: module.Y})
	}
	kin, err := kinematics.NewSwerveDriveKinematics(positions...)
	if err != nil {
		return nil, err
	}

	heading, err := params.Gyro.Heading(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read initial gyro heading")
	}

	clk := params.Clock
	if clk == nil {
		clk = clock.New()
	}
	updateRate := time.Duration(cfg.UpdateRateMs) * time.Millisecond
	if updateRate == 0 {
		updateRate = defaultUpdateRate
	}

	return &Drive{
		modules:    append([]Module{}, params.Modules...),
		gyro:       params.Gyro,
		maxSpeed:   cfg.MaxSpeed,
		updateRate: updateRate,
		clock:      clk,
		logger:     params.Logger,
		kinematics: kin,
		odometry:   kinematics.NewSwerveDriveOdometry(kin, heading, spatialmath.NewZeroPose()),
	}, nil
}

// SetVelocity commands the chassis to move at the given robot relative
// speeds, rotating about the robot center.
func (d *Drive) SetVelocity(ctx context.Context, speeds kinematics.ChassisSpeeds) error {
	return d.SetVelocityAbout(ctx, speeds, r2.Point{})
}

// SetVelocityAbout is SetVelocity with a movable center of rotation, given
// relative to the robot center. Passing a wheel position makes the robot
// pivot about that wheel.
func (d *Drive) SetVelocityAbout(
	ctx context.Context, speeds kinematics.ChassisSpeeds, centerOfRotation r2.Point,
) error {
	d.mu.Lock()
	states := d.kinematics.ToSwerveModuleStates(speeds, centerOfRotation)
	d.mu.Unlock()

	kinematics.NormalizeWheelSpeeds(states, d.maxSpeed)
	return d.setModuleStates(ctx, states)
}

// SetFieldVelocity commands the chassis with field relative speeds,
// reading the gyro to rotate them into the robot frame first.
func (d *Drive) SetFieldVelocity(ctx context.Context, speeds kinematics.ChassisSpeeds) error {
	heading, err := d.gyro.Heading(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot read gyro heading")
	}
	return d.SetVelocity(ctx, kinematics.FromFieldRelativeSpeeds(
		speeds.Vx, speeds.Vy, speeds.Omega, heading))
}

func (d *Drive) setModuleStates(ctx context.Context, states []kinematics.SwerveModuleState) error {
	fs := make([]swerveutils.SimpleFunc, 0, len(d.modules))
	for i, module := range d.modules {
		state := states[i]
		module := module
		fs = append(fs, func(ctx context.Context) error {
			return module.SetDesiredState(ctx, state)
		})
	}

	if _, err := swerveutils.RunInParallel(ctx, fs); err != nil {
		return multierr.Combine(err, d.Stop(ctx))
	}
	return nil
}

// Stop stops every module.
func (d *Drive) Stop(ctx context.Context) error {
	var err error
	for _, module := range d.modules {
		err = multierr.Combine(err, module.Stop(ctx))
	}
	return err
}

// Pose returns the pose odometry has accumulated so far.
func (d *Drive) Pose() spatialmath.Pose {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.odometry.Pose()
}

// ResetPose declares the robot to be at pose, re-anchoring odometry
// against the current gyro reading.
func (d *Drive) ResetPose(ctx context.Context, pose spatialmath.Pose) error {
	heading, err := d.gyro.Heading(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot read gyro heading")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.odometry.ResetPosition(pose, heading)
	return nil
}

// UpdateOdometry folds one reading of the gyro and every module into the
// tracked pose, stamped with the drive's clock. The tracking loop calls
// this on a ticker; it can also be called directly when driving the loop
// by hand.
func (d *Drive) UpdateOdometry(ctx context.Context) (spatialmath.Pose, error) {
	heading, err := d.gyro.Heading(ctx)
	if err != nil {
		return d.Pose(), errors.Wrap(err, "cannot read gyro heading")
	}

	states := make([]kinematics.SwerveModuleState, 0, len(d.modules))
	for _, module := range d.modules {
		state, err := module.State(ctx)
		if err != nil {
			return d.Pose(), errors.Wrap(err, "cannot read module state")
		}
		states = append(states, state)
	}

	now := float64(d.clock.Now().UnixNano()) / float64(time.Second)
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.odometry.UpdateWithTime(now, heading, states...)
}

// StartTracking begins updating odometry in the background at the
// configured rate until Close is called. Starting twice is a no-op.
func (d *Drive) StartTracking() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.trackingDone != nil {
		return
	}

	var cancelCtx context.Context
	cancelCtx, d.trackingDone = context.WithCancel(context.Background())
	d.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		ticker := d.clock.Ticker(d.updateRate)
		defer ticker.Stop()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case <-ticker.C:
			}
			if _, err := d.UpdateOdometry(cancelCtx); err != nil {
				d.logger.Errorw("failed to update odometry", "error", err)
			}
		}
	}, d.activeBackgroundWorkers.Done)
}

// Close stops the tracking loop and then the modules.
func (d *Drive) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.trackingDone != nil {
		d.trackingDone()
		d.trackingDone = nil
	}
	d.mu.Unlock()
	d.activeBackgroundWorkers.Wait()
	return d.Stop(ctx)
}
