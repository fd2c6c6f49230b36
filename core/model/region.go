package model

// Region administrative levels.
const (
	LevelState        = "Estado"
	LevelMunicipality = "Município"
	LevelZone         = "Zona"
)

// Region is one node of the administrative hierarchy. Child order is
// preserved exactly as received.
type Region struct {
	Name     string   `json:"name"`
	Level    string   `json:"level"`
	Children []Region `json:"children"`
}

// Walk visits the region and all descendants depth-first in child order.
func (r Region) Walk(fn func(Region, int)) {
	r.walk(fn, 0)
}

func (r Region) walk(fn func(Region, int), depth int) {
	fn(r, depth)
	for _, c := range r.Children {
		c.walk(fn, depth+1)
	}
}
