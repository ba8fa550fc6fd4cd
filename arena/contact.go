package arena

import (
	"github.com/automoto/beatboss/config"
	"github.com/automoto/beatboss/tags"
	"github.com/jakecoffman/cp"
	"github.com/solarlune/resolv"
	dmath "github.com/yohamta/donburi/features/math"
)

// NormalSource records which query produced a contact normal.
type NormalSource int

const (
	FromOverlap NormalSource = iota
	FromNearest
	FromTravel
)

// Contact describes an object overlapping a wall. Normal points out of the
// wall and Depth is how far the object must move along it to separate.
type Contact struct {
	Normal  dmath.Vec2
	Depth   float64
	Source  NormalSource
	Leaving bool
}

// Contact reports whether obj overlaps a wall and, if so, which way is out.
// The exact overlap vector is preferred; when it is degenerate the nearest
// wall surface to pos is used, and failing that the reverse of dir.
func (a *Arena) Contact(obj *resolv.Object, pos, dir dmath.Vec2) (Contact, bool) {
	if obj == nil || obj.Shape == nil {
		return Contact{}, false
	}
	check := obj.Check(0, 0, tags.ResolvSolid)
	if check == nil {
		return Contact{}, false
	}

	touching := false
	for _, wall := range check.ObjectsByTags(tags.ResolvSolid) {
		if wall.Shape == nil {
			continue
		}
		cs := obj.Shape.Intersection(0, 0, wall.Shape)
		if cs == nil {
			continue
		}
		touching = true
		mtv := dmath.Vec2{X: cs.MTV.X(), Y: cs.MTV.Y()}
		n := mtv.Normalized()
		if n == (dmath.Vec2{}) {
			continue
		}
		// The overlap vector must point out of the wall.
		if g, _, ok := a.nearestNormal(pos); ok && n.Dot(&g) < 0 {
			n = n.MulScalar(-1)
		}
		return Contact{Normal: n, Depth: mtv.Magnitude(), Source: FromOverlap}, true
	}

	// An object swallowed whole by a wall has no crossing edges, so the
	// overlap test misses it.
	half := obj.W / 2
	if n, dist, ok := a.nearestNormal(pos); ok && (touching || dist < half) {
		return Contact{Normal: n, Depth: max(0, half-dist), Source: FromNearest}, true
	}
	if !touching {
		return Contact{}, false
	}
	return Contact{Normal: dir.Normalized().MulScalar(-1), Source: FromTravel}, true
}

// nearestNormal returns the outward gradient of the wall surface closest to
// pos and the signed distance to it, negative inside a wall.
func (a *Arena) nearestNormal(pos dmath.Vec2) (dmath.Vec2, float64, bool) {
	info := a.shapes.PointQueryNearest(cp.Vector{X: pos.X, Y: pos.Y}, config.Arena.NormalProbe, cp.SHAPE_FILTER_ALL)
	if info.Shape == nil {
		return dmath.Vec2{}, 0, false
	}
	n := dmath.NewVec2(info.Gradient.X, info.Gradient.Y).Normalized()
	if n == (dmath.Vec2{}) {
		return dmath.Vec2{}, 0, false
	}
	return n, info.Distance, true
}

// BoundaryContact reports a wall contact for obj with the normal turned to
// oppose dir, ready for the boundary pipeline. Leaving is set when dir
// already pointed out of the wall.
func (a *Arena) BoundaryContact(obj *resolv.Object, pos, dir dmath.Vec2) (Contact, bool) {
	c, ok := a.Contact(obj, pos, dir)
	if !ok {
		return Contact{}, false
	}
	if c.Normal.Dot(&dir) > 0 {
		c.Normal = c.Normal.MulScalar(-1)
		c.Leaving = true
	}
	return c, true
}

// Outward is the contact normal pointing out of the wall.
func (c Contact) Outward() dmath.Vec2 {
	if c.Leaving {
		return c.Normal.MulScalar(-1)
	}
	return c.Normal
}
