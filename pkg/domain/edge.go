package domain

import "strings"

// EdgeStatus distinguishes tentative edges from permanent ones.
type EdgeStatus string

const (
	EdgePending   EdgeStatus = "pending"
	EdgeConfirmed EdgeStatus = "confirmed"
)

// Edge is a directed link between two nodes.
// Connectivity ignores both direction and status.
type Edge struct {
	ID     string     `json:"id"`
	Source string     `json:"source"`
	Target string     `json:"target"`
	Status EdgeStatus `json:"status"`
}

// idEscaper escapes the separator inside node ids so that distinct pairs
// never derive the same edge id ("a-b"+"c" vs "a"+"b-c").
var idEscaper = strings.NewReplacer(`\`, `\\`, "-", `\-`)

// EdgeID derives the id for an edge between source and target.
// Pending and confirmed edges use different prefixes so they never collide.
// Hyphens and backslashes inside node ids are backslash-escaped.
func EdgeID(status EdgeStatus, source, target string) string {
	return string(status) + "-" + idEscaper.Replace(source) + "-" + idEscaper.Replace(target)
}

// NewPendingEdge builds the scaffolding edge for a connection awaiting confirmation.
func NewPendingEdge(source, target string) Edge {
	return Edge{
		ID:     EdgeID(EdgePending, source, target),
		Source: source,
		Target: target,
		Status: EdgePending,
	}
}

// NewConfirmedEdge builds the permanent edge for a committed connection.
func NewConfirmedEdge(source, target string) Edge {
	return Edge{
		ID:     EdgeID(EdgeConfirmed, source, target),
		Source: source,
		Target: target,
		Status: EdgeConfirmed,
	}
}

// Pending reports whether the edge still awaits confirmation.
// Presentation layers draw pending edges dashed and animated.
func (e Edge) Pending() bool {
	return e.Status == EdgePending
}

// Touches reports whether id is one of the edge endpoints.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}
