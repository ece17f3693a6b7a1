// Package fake implements a fake swerve module and gyro for testing and
// simulation.
package fake

import (
	"context"
	"sync"

	"go.viam.com/swerve/drive"
	"go.viam.com/swerve/kinematics"
	"go.viam.com/swerve/spatialmath"
)

var (
	_ drive.Module = (*Module)(nil)
	_ drive.Gyro   = (*Gyro)(nil)
)

// Module is a fake drive.Module that tracks commands perfectly: unless a
// measured state has been injected, it reports whatever was last
// commanded.
type Module struct {
	mu       sync.Mutex
	name     string
	desired  kinematics.SwerveModuleState
	measured *kinematics.SwerveModuleState
	stopped  bool
}

// NewModule returns a named fake module at rest pointing along +X.
func NewModule(name string) *Module {
	return &Module{
		name:    name,
		desired: kinematics.SwerveModuleState{Angle: spatialmath.NewRotation(0)},
	}
}

// Name returns the name of the module.
func (m *Module) Name() string {
	return m.name
}

// SetDesiredState commands the module.
func (m *Module) SetDesiredState(ctx context.Context, state kinematics.SwerveModuleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.desired = state
	m.stopped = false
	return nil
}

// State returns the injected measured state if any, otherwise the last
// commanded state.
func (m *Module) State(ctx context.Context) (kinematics.SwerveModuleState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.measured != nil {
		return *m.measured, nil
	}
	return m.desired, nil
}

// Stop brings the wheel to rest, keeping its azimuth.
func (m *Module) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.desired.Speed = 0
	m.stopped = true
	return nil
}

// DesiredState returns the last commanded state.
func (m *Module) DesiredState() kinematics.SwerveModuleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.desired
}

// SetMeasuredState overrides what State reports, decoupling feedback from
// commands. Tests use this to simulate slip or sensor disagreement.
func (m *Module) SetMeasuredState(state kinematics.SwerveModuleState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.measured = &state
}

// Stopped reports whether Stop was called more recently than a command.
func (m *Module) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Gyro is a fake drive.Gyro with a settable heading.
type Gyro struct {
	mu      sync.Mutex
	heading spatialmath.Rotation
}

// NewGyro returns a fake gyro reading zero.
func NewGyro() *Gyro {
	return &Gyro{heading: spatialmath.NewRotation(0)}
}

// Heading returns the fake heading.
func (g *Gyro) Heading(ctx context.Context) (spatialmath.Rotation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.heading, nil
}

// SetHeading sets what Heading reports.
func (g *Gyro) SetHeading(heading spatialmath.Rotation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.heading = heading
}
