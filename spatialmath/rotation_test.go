package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestRotationRadiansToDegrees(t *testing.T) {
	test.That(t, NewRotation(math.Pi/3).Degrees(), test.ShouldAlmostEqual, 60)
	test.That(t, NewRotation(math.Pi/4).Degrees(), test.ShouldAlmostEqual, 45)
	test.That(t, NewRotation(-math.Pi/2).Degrees(), test.ShouldAlmostEqual, -90)
}

func TestRotationDegreesToRadians(t *testing.T) {
	test.That(t, NewRotationFromDegrees(45).Radians(), test.ShouldAlmostEqual, math.Pi/4)
	test.That(t, NewRotationFromDegrees(30).Radians(), test.ShouldAlmostEqual, math.Pi/6)
}

func TestRotationComponents(t *testing.T) {
	r := NewRotationFromDegrees(60)
	test.That(t, r.Cos(), test.ShouldAlmostEqual, 0.5)
	test.That(t, r.Sin(), test.ShouldAlmostEqual, math.Sqrt(3)/2)
	test.That(t, r.Tan(), test.ShouldAlmostEqual, math.Sqrt(3))
}

func TestRotationAdd(t *testing.T) {
	sum := NewRotation(0).Add(NewRotationFromDegrees(90))
	test.That(t, sum.Radians(), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, sum.Degrees(), test.ShouldAlmostEqual, 90)

	sum = NewRotationFromDegrees(90).Add(NewRotationFromDegrees(30))
	test.That(t, sum.Degrees(), test.ShouldAlmostEqual, 120)
}

func TestRotationSub(t *testing.T) {
	diff := NewRotationFromDegrees(70).Sub(NewRotationFromDegrees(30))
	test.That(t, diff.Degrees(), test.ShouldAlmostEqual, 40)
}

func TestRotationWraps(t *testing.T) {
	sum := NewRotationFromDegrees(170).Add(NewRotationFromDegrees(30))
	test.That(t, sum.Degrees(), test.ShouldAlmostEqual, -160)

	diff := NewRotationFromDegrees(-170).Sub(NewRotationFromDegrees(30))
	test.That(t, diff.Degrees(), test.ShouldAlmostEqual, 160)
}

func TestRotationInverse(t *testing.T) {
	test.That(t, NewRotationFromDegrees(20).Inverse().Degrees(), test.ShouldAlmostEqual, -20)

	a := NewRotationFromDegrees(43)
	b := NewRotationFromDegrees(85.7)
	test.That(t, RotationAlmostEqual(a.Add(b).Add(b.Inverse()), a), test.ShouldBeTrue)
}

func TestRotationMul(t *testing.T) {
	test.That(t, NewRotationFromDegrees(30).Mul(3).Degrees(), test.ShouldAlmostEqual, 90)

	half := NewRotationFromDegrees(90).Mul(0.5)
	test.That(t, half.Cos(), test.ShouldAlmostEqual, math.Sqrt2/2)
	test.That(t, half.Sin(), test.ShouldAlmostEqual, math.Sqrt2/2)
}

func TestRotationFromXY(t *testing.T) {
	r := NewRotationFromXY(3, 3)
	test.That(t, r.Degrees(), test.ShouldAlmostEqual, 45)
	test.That(t, r.Cos(), test.ShouldAlmostEqual, math.Sqrt2/2)
	test.That(t, r.Sin(), test.ShouldAlmostEqual, math.Sqrt2/2)

	r = NewRotationFromXY(0, -2)
	test.That(t, r.Degrees(), test.ShouldAlmostEqual, -90)
}

func TestRotationFromXYDegenerate(t *testing.T) {
	r := NewRotationFromXY(0, 0)
	test.That(t, r.Radians(), test.ShouldEqual, 0)
	test.That(t, r.Cos(), test.ShouldEqual, 1)
	test.That(t, r.Sin(), test.ShouldEqual, 0)
}

func TestRotationAlmostEqual(t *testing.T) {
	test.That(t, RotationAlmostEqual(NewRotationFromDegrees(43), NewRotationFromDegrees(43)), test.ShouldBeTrue)
	test.That(t, RotationAlmostEqual(NewRotationFromDegrees(43), NewRotationFromDegrees(43.5)), test.ShouldBeFalse)
}
