package store

// SchemeSnapshot is the structured half of the scheme context. Read only.
type SchemeSnapshot struct {
	TenantID         string         `json:"tenant_id"`
	DevelopmentID    string         `json:"development_id,omitempty"`
	DevelopmentName  string         `json:"development_name,omitempty"`
	DevelopmentCount int            `json:"development_count"`
	TotalUnits       int            `json:"total_units"`
	UnitsByStatus    map[string]int `json:"units_by_status"`
	PipelineByStage  map[string]int `json:"pipeline_by_stage"`
}

func (s SchemeSnapshot) HasDevelopment() bool {
	return s.DevelopmentID != ""
}

// SchemeContext is built once per request before routing.
type SchemeContext struct {
	Summary  string         `json:"summary"`
	Snapshot SchemeSnapshot `json:"snapshot"`
}
