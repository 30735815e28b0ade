package simulator

import "github.com/chrisdamba/trafficsim/internal/models"

// RouteCatalog is the immutable set of routes the engine simulates. It is
// built once at startup and safe for concurrent reads.
type RouteCatalog struct {
	routes []models.Route
	byID   map[string]models.Route
}

func NewRouteCatalog(routes []models.Route) *RouteCatalog {
	byID := make(map[string]models.Route, len(routes))
	for _, route := range routes {
		byID[route.ID] = route
	}
	return &RouteCatalog{routes: routes, byID: byID}
}

func (c *RouteCatalog) Get(id string) (models.Route, bool) {
	route, ok := c.byID[id]
	return route, ok
}

func (c *RouteCatalog) Routes() []models.Route {
	return c.routes
}

func (c *RouteCatalog) Len() int {
	return len(c.routes)
}
