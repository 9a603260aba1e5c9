package mindmap

import "github.com/starford/histmap/internal/models"

// PlacedNode is a node with its derived position.
type PlacedNode struct {
	models.HistoryNode
	Index int     `json:"index"`
	Angle float64 `json:"angle"`
	Unit  Point   `json:"unit"`
	Point Point   `json:"point"`
}

// Graph is the laid-out mind map handed to renderers.
type Graph struct {
	Canvas Canvas       `json:"canvas"`
	Center Point        `json:"center"`
	Nodes  []PlacedNode `json:"nodes"`
	Edges  []Edge       `json:"edges"`
}

// Build positions nodes around the canvas circle and attaches the edge set.
// An empty sequence yields an empty graph.
func Build(nodes []models.HistoryNode, canvas Canvas) (*Graph, error) {
	edges, err := Edges(nodes)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Canvas: canvas,
		Center: canvas.Center(),
		Nodes:  make([]PlacedNode, len(nodes)),
		Edges:  edges,
	}
	for i, n := range nodes {
		angle := PositionOf(i, len(nodes))
		g.Nodes[i] = PlacedNode{
			HistoryNode: n,
			Index:       i,
			Angle:       angle,
			Unit:        UnitPoint(i, len(nodes)),
			Point:       canvas.Place(angle),
		}
	}
	return g, nil
}
