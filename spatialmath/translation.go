package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/swerve/utils"
)

// defaultPointEpsilon is the per coordinate tolerance used when comparing
// points, twists, and poses.
const defaultPointEpsilon = 1e-9

// RotatePoint rotates p counterclockwise by r about the origin:
//
//	[x'] = [cos -sin][x]
//	[y']   [sin  cos][y]
func RotatePoint(p r2.Point, r Rotation) r2.Point {
	return r2.Point{
		X: p.X*r.cos - p.Y*r.sin,
		Y: p.X*r.sin + p.Y*r.cos,
	}
}

// PointDistance returns the euclidean distance between two points.
func PointDistance(p, q r2.Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// PointAlmostEqual returns whether two points are equal to within a small
// tolerance on each coordinate.
func PointAlmostEqual(p, q r2.Point) bool {
	return PointAlmostEqualEps(p, q, defaultPointEpsilon)
}

// PointAlmostEqualEps returns whether two points are equal to within epsilon
// on each coordinate.
func PointAlmostEqualEps(p, q r2.Point, epsilon float64) bool {
	return utils.Float64AlmostEqual(p.X, q.X, epsilon) &&
		utils.Float64AlmostEqual(p.Y, q.Y, epsilon)
}
