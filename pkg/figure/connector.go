package figure

import "github.com/ha1tch/drawkit/pkg/geom"

// Connector relates one end of a connection to the figure it attaches to.
// It holds no state besides its owner and is never persisted on its own.
type Connector struct {
	owner Connectable
}

// NewConnector creates a connector attached to owner.
func NewConnector(owner Connectable) *Connector {
	return &Connector{owner: owner}
}

// Owner returns the figure the connector attaches to.
func (c *Connector) Owner() Connectable { return c.owner }

// Chop returns the attachment point on the owner for a connection
// arriving from from.
func (c *Connector) Chop(from geom.Point) geom.Point {
	return c.owner.Chop(from)
}

// Center returns the center of the owner's bounds.
func (c *Connector) Center() geom.Point {
	return c.owner.Bounds().Center()
}
