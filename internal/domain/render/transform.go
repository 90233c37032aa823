package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
)

// Transform is the model-space placement of one logo decal.
//
// Rotation is the additive Euler form (radians, XYZ order): base rotation plus
// the user rotation about Z, plus a half-turn about the archetype's axis for
// back-side locations.  Orientation is the equivalent quaternion with the
// half-turn applied as a separate, left-multiplied rotation.
type Transform struct {
	Position    mgl64.Vec3 `json:"position"`
	Rotation    mgl64.Vec3 `json:"rotation"`
	Orientation mgl64.Quat `json:"orientation"`
	Scale       mgl64.Vec3 `json:"scale"`
}

// MapTransform computes the decal transform of loc under state.  The result
// depends only on its arguments.
func MapTransform(tmpl customization.ProductTemplate, loc customization.PlacementLocation, state customization.PlacementState) Transform {
	anchor := loc.Anchor

	pos := anchor.Offset
	if tmpl.MirrorsX(loc) {
		pos[0] = -pos[0]
	}

	userRad := mgl64.DegToRad(state.Rotation())
	euler := anchor.BaseRotation.Add(mgl64.Vec3{0, 0, userRad})
	orient := mgl64.AnglesToQuat(euler.X(), euler.Y(), euler.Z(), mgl64.XYZ)

	if loc.IsBack() {
		axis := tmpl.Archetype.BackHalfTurnAxis
		euler = euler.Add(axis.Mul(math.Pi))
		orient = mgl64.QuatRotate(math.Pi, axis).Mul(orient).Normalize()
	}

	s := state.Size() / 100 * loc.BaseScale
	aspect := tmpl.Archetype.AspectScale
	return Transform{
		Position:    pos,
		Rotation:    euler,
		Orientation: orient,
		Scale:       mgl64.Vec3{s * aspect.X(), s * aspect.Y(), 1},
	}
}

//Personal.AI order the ending
