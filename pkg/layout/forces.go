package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/relmap/pkg/geom"
	"github.com/vanderheijden86/relmap/pkg/model"
)

// Force tuning. Link distances depend on edge type: co-occurring people sit
// closest, hierarchy and cross-org links stretch the farthest.
const (
	linkDistanceShort = 60.0
	linkDistanceMid   = 100.0
	linkDistanceLong  = 170.0

	defaultLinkStrength = 0.3

	repulsionStrength = 900.0
	repulsionMaxDist  = 320.0

	centeringStrength = 0.02

	collisionMargin = 4.0

	cohesionStrength = 0.25

	boundaryPad   = 40.0
	boundaryNudge = 1.6
)

// linkDistance returns the rest length for an edge type.
func linkDistance(t model.EdgeType) float64 {
	switch t {
	case model.EdgeCoOccurrence:
		return linkDistanceShort
	case model.EdgeHierarchy, model.EdgeCrossOrg:
		return linkDistanceLong
	case model.EdgeOrgRelationship, model.EdgeDealRole, model.EdgeMovedTo:
		return linkDistanceMid
	default:
		return linkDistanceMid
	}
}

// applyLinkForce attracts connected nodes toward the edge's rest length,
// with pull strength equal to the edge's strength score.
func applyLinkForce(edges []*model.Edge, alpha float64) {
	for _, e := range edges {
		strength := e.Strength
		if strength <= 0 {
			strength = defaultLinkStrength
		}
		dx := e.Target.X - e.Source.X
		dy := e.Target.Y - e.Source.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			dist, dx = 1e-3, 1e-3
		}
		pull := (dist - linkDistance(e.Type)) / dist * strength * alpha
		fx, fy := dx*pull*0.5, dy*pull*0.5
		e.Source.VX += fx
		e.Source.VY += fy
		e.Target.VX -= fx
		e.Target.VY -= fy
	}
}

// applyRepulsion pushes all node pairs apart with inverse-distance falloff,
// capped beyond a maximum interaction distance so far pairs cost nothing.
func applyRepulsion(nodes []*model.Node, alpha float64) {
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			distSq := dx*dx + dy*dy
			if distSq > repulsionMaxDist*repulsionMaxDist {
				continue
			}
			if distSq < 1 {
				distSq = 1
			}
			dist := math.Sqrt(distSq)
			push := repulsionStrength / distSq * alpha
			fx, fy := dx/dist*push, dy/dist*push
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}
}

// applyCentering gently pulls the whole layout toward the viewport center.
func applyCentering(nodes []*model.Node, cx, cy, alpha float64) {
	for _, n := range nodes {
		n.VX += (cx - n.X) * centeringStrength * alpha
		n.VY += (cy - n.Y) * centeringStrength * alpha
	}
}

// applyCollision separates overlapping pairs by radius plus a fixed margin,
// splitting the correction between both nodes.
func applyCollision(nodes []*model.Node) {
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			minDist := a.Radius + b.Radius + collisionMargin
			dx := b.X - a.X
			dy := b.Y - a.Y
			distSq := dx*dx + dy*dy
			if distSq >= minDist*minDist {
				continue
			}
			dist := math.Sqrt(distSq)
			if dist == 0 {
				dist, dx = 1e-3, 1e-3
			}
			overlap := (minDist - dist) / dist * 0.5
			fx, fy := dx*overlap, dy*overlap
			a.VX -= fx
			a.VY -= fy
			b.VX += fx
			b.VY += fy
		}
	}
}

// applyClusterCohesion pulls unpinned cluster members toward their cluster's
// live centroid, proportional to the solver temperature. With at most one
// cluster the force would fight centering for no visual gain, so it scales
// to zero.
func applyClusterCohesion(clusters []model.Cluster, alpha float64) {
	if len(clusters) <= 1 {
		return
	}
	for _, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		pts := make([]r2.Vec, len(c.Members))
		for i, n := range c.Members {
			pts[i] = r2.Vec{X: n.X, Y: n.Y}
		}
		centroid := geom.Centroid(pts)
		k := cohesionStrength * alpha
		for _, n := range c.Members {
			if n.Pinned() {
				continue
			}
			n.VX += (centroid.X - n.X) * k
			n.VY += (centroid.Y - n.Y) * k
		}
	}
}

// applyBoundary nudges nodes drifting within the viewport padding back
// inward. A nudge, not a clamp: pinned or dragged nodes may still cross.
func applyBoundary(nodes []*model.Node, width, height float64) {
	for _, n := range nodes {
		if n.X < boundaryPad {
			n.VX += boundaryNudge
		} else if n.X > width-boundaryPad {
			n.VX -= boundaryNudge
		}
		if n.Y < boundaryPad {
			n.VY += boundaryNudge
		} else if n.Y > height-boundaryPad {
			n.VY -= boundaryNudge
		}
	}
}
