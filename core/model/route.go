package model

// Route is a shortest path computed by the backend between two named
// locations. The path includes origin and destination when it has at least
// two waypoints.
type Route struct {
	Origin        string   `json:"origem"`
	Destination   string   `json:"destino"`
	Path          []string `json:"rota"`
	Distance      float64  `json:"distancia"`
	EstimatedTime float64  `json:"tempo_estimado"`
}
