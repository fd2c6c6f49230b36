package model

import "fmt"

// Affected-area status values. These are distinct from emergency statuses.
const (
	AreaActive    = "ativo"
	AreaControl   = "controle em andamento"
	AreaContained = "contido"
	AreaResolved  = "resolvido"
)

// AffectedArea is the spatial footprint of one emergency, keyed by the
// originating emergency id.
type AffectedArea struct {
	EmergencyID int    `json:"emergency_id"`
	Location    string `json:"local"`
	Status      string `json:"status"`
}

// ValidAreaStatus checks a status value before it is submitted.
func ValidAreaStatus(status string) error {
	switch status {
	case AreaActive, AreaControl, AreaContained, AreaResolved:
		return nil
	}
	return fmt.Errorf("unknown area status: %s", status)
}
