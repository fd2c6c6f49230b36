package model

import "fmt"

// Emergency status values as delivered by the backend.
const (
	EmergencyPending    = "pendente"
	EmergencyInProgress = "em_atendimento"
	EmergencyControl    = "controle em andamento"
	EmergencyContained  = "contido"
	EmergencyResolved   = "resolvido"
)

// Vegetation types recognised by the backend's priority model.
const (
	VegetationCerrado       = "cerrado"
	VegetationMataAtlantica = "mata_atlantica"
	VegetationPantanal      = "pantanal"
)

// Climate conditions attached to a call.
const (
	ClimateDry   = "seco"
	ClimateWindy = "ventoso"
	ClimateHumid = "umido"
)

// Emergency is one call in the dispatch queue. All fields are owned by the
// backend; the client only holds snapshots.
type Emergency struct {
	ID         int     `json:"id"`
	Location   string  `json:"local"`
	Severity   int     `json:"severidade"`
	Vegetation string  `json:"tipo_vegetacao"`
	Climate    string  `json:"clima"`
	Priority   float64 `json:"prioridade"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"data_criacao,omitempty"`
}

// NewEmergencyRequest is the payload for creating a call.
type NewEmergencyRequest struct {
	Location   string `json:"local"`
	Severity   int    `json:"severidade"`
	Vegetation string `json:"tipo_vegetacao"`
	Climate    string `json:"clima"`
}

// Validate checks the request before it is sent to the backend.
func (r NewEmergencyRequest) Validate() error {
	if r.Location == "" {
		return fmt.Errorf("local is required")
	}
	if r.Severity < 1 || r.Severity > 5 {
		return fmt.Errorf("severidade must be between 1 and 5, got %d", r.Severity)
	}
	switch r.Vegetation {
	case VegetationCerrado, VegetationMataAtlantica, VegetationPantanal:
	default:
		return fmt.Errorf("unknown tipo_vegetacao: %s", r.Vegetation)
	}
	switch r.Climate {
	case ClimateDry, ClimateWindy, ClimateHumid:
	default:
		return fmt.Errorf("unknown clima: %s", r.Climate)
	}
	return nil
}

// AssignmentRequest commits a team to an emergency together with the
// follow-up actions the operator selected.
type AssignmentRequest struct {
	EmergencyID int      `json:"emergency_id"`
	TeamID      int      `json:"team_id"`
	Actions     []string `json:"actions"`
}

// AssignmentResult is the backend's answer to an assignment commit.
type AssignmentResult struct {
	EmergencyID   int      `json:"ocorrencia_id"`
	TeamID        int      `json:"equipe_id"`
	Priority      float64  `json:"prioridade"`
	Actions       []string `json:"acoes"`
	RoutePath     []string `json:"rota"`
	EstimatedTime float64  `json:"tempo_estimado"`
	AreaStatus    string   `json:"status_area"`
}
