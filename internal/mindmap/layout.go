// Package mindmap computes the radial layout and the relatedness edges of a
// history node sequence.
package mindmap

import (
	"fmt"
	"math"
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionOf returns the angle in radians of the node at index within a
// sequence of total nodes. The angle depends on the index in the current
// sequence only, so reordering the input moves every node.
//
// total must be at least 1; PositionOf panics otherwise.
func PositionOf(index, total int) float64 {
	if total < 1 {
		panic(fmt.Sprintf("mindmap: PositionOf called with total %d", total))
	}
	return float64(index) / float64(total) * 2 * math.Pi
}

// UnitPoint returns the node's position on the unit circle.
func UnitPoint(index, total int) Point {
	a := PositionOf(index, total)
	return Point{X: math.Cos(a), Y: math.Sin(a)}
}

// Canvas describes the drawing surface the circle is centred on.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
}

// Center returns the middle of the canvas.
func (c Canvas) Center() Point {
	return Point{X: c.Width / 2, Y: c.Height / 2}
}

// Place maps an angle onto the canvas circle.
func (c Canvas) Place(angle float64) Point {
	center := c.Center()
	return Point{
		X: center.X + c.Radius*math.Cos(angle),
		Y: center.Y + c.Radius*math.Sin(angle),
	}
}
