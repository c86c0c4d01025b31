package model

import "time"

// Core domain types shared by the conformity and instance pipelines.

// RoleCategory is the professional category derived from an occupation code.
type RoleCategory string

const (
	Physician             RoleCategory = "PHYSICIAN"
	Nurse                 RoleCategory = "NURSE"
	NursingTechnician     RoleCategory = "NURSING_TECHNICIAN"
	Physiotherapist       RoleCategory = "PHYSIOTHERAPIST"
	SocialWorker          RoleCategory = "SOCIAL_WORKER"
	SpeechTherapist       RoleCategory = "SPEECH_THERAPIST"
	Nutritionist          RoleCategory = "NUTRITIONIST"
	Psychologist          RoleCategory = "PSYCHOLOGIST"
	OccupationalTherapist RoleCategory = "OCCUPATIONAL_THERAPIST"
	Dentist               RoleCategory = "DENTIST"
	Pharmacist            RoleCategory = "PHARMACIST"
	Other                 RoleCategory = "OTHER"
)

// Legally defined home-care team types (tbTipoEquipe codes).
const (
	TeamTypeEMADI  = 22 // EMAD I
	TeamTypeEMADII = 46 // EMAD II
	TeamTypeEMAP   = 23 // support team
	TeamTypeEMAPR  = 77 // rehab/rural support team
)

// TeamTypeName maps a team type code to its legal label.
var TeamTypeName = map[int]string{
	TeamTypeEMADI:  "EMAD I",
	TeamTypeEMADII: "EMAD II",
	TeamTypeEMAP:   "EMAP",
	TeamTypeEMAPR:  "EMAP-R",
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is the simplified sector geometry used for patient placement.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// TimeWindow bounds a visit in minutes since midnight.
type TimeWindow struct {
	StartMin int `json:"startMin"`
	EndMin   int `json:"endMin"`
}

// ProfessionalRecord is one person's active assignment to one team, with
// the weekly-hours breakdown by care setting. Read-only after ingestion.
type ProfessionalRecord struct {
	TeamID          string  `json:"teamId"`
	ProfessionalID  string  `json:"professionalId"`
	OccupationCode  string  `json:"occupationCode"`
	FacilityID      string  `json:"facilityId,omitempty"`
	OutpatientHours float64 `json:"outpatientHours"`
	InpatientHours  float64 `json:"inpatientHours"`
	OtherHours      float64 `json:"otherHours"`
}

// SkillAggregate is the per-category slice of a team's skill vector.
type SkillAggregate struct {
	Hours     float64 `json:"hours"`
	Headcount int     `json:"headcount"`
}

// Team is the per-team aggregate built from qualifying professional
// records. Immutable once built.
type Team struct {
	ID            string                          `json:"id"`
	FacilityID    string                          `json:"facilityId"`
	Seq           string                          `json:"seq"`
	TypeCode      int                             `json:"typeCode"`
	Municipality  string                          `json:"municipality,omitempty"`
	Position      *GeoPoint                       `json:"position,omitempty"`
	CapacityHours float64                         `json:"capacityHours"`
	Skills        map[RoleCategory]SkillAggregate `json:"skills"`
}

// UnmetRequirement describes one failed rule-table requirement.
type UnmetRequirement struct {
	Requirement   string         `json:"requirement"`
	Categories    []RoleCategory `json:"categories"`
	RequiredHours float64        `json:"requiredHours,omitempty"`
	ActualHours   float64        `json:"actualHours"`
	RequiredCount int            `json:"requiredCount,omitempty"`
	ActualCount   int            `json:"actualCount,omitempty"`
}

type ConformityVerdict struct {
	TeamID    string             `json:"teamId"`
	TypeCode  int                `json:"typeCode"`
	TypeName  string             `json:"typeName"`
	Compliant bool               `json:"compliant"`
	Unmet     []UnmetRequirement `json:"unmet,omitempty"`
}

// ConformityRun is the persisted result of one evaluator run.
type ConformityRun struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"createdAt"`
	RuleVersion string              `json:"ruleVersion"`
	Region      string              `json:"region,omitempty"`
	Total       int                 `json:"total"`
	Compliant   int                 `json:"compliant"`
	Verdicts    []ConformityVerdict `json:"verdicts,omitempty"`
}

// CensusSector is one census geographic unit. Confidential sentinel values
// in the source are already folded to zero by ingestion.
type CensusSector struct {
	ID              string       `json:"id"`
	Municipality    string       `json:"municipality"`
	PopulationTotal int          `json:"populationTotal"`
	Pop60to69       int          `json:"pop60to69"`
	Pop70plus       int          `json:"pop70plus"`
	Centroid        *GeoPoint    `json:"centroid,omitempty"`
	BBox            *BoundingBox `json:"bbox,omitempty"`
}

// ElderlyPopulation is the 60+ total used for demand weighting.
func (s CensusSector) ElderlyPopulation() int { return s.Pop60to69 + s.Pop70plus }

// Depot is the supply-side entry of an optimization instance: a real team
// mapped onto its facility position with capacity and skill vector.
type Depot struct {
	ID               string                          `json:"id"`
	TeamID           string                          `json:"teamId"`
	FacilityID       string                          `json:"facilityId"`
	TypeCode         int                             `json:"typeCode"`
	TypeName         string                          `json:"typeName"`
	Position         GeoPoint                        `json:"position"`
	CapacityHours    float64                         `json:"capacityHours"`
	DailyCapacityMin int                             `json:"dailyCapacityMin"`
	Skills           map[RoleCategory]SkillAggregate `json:"skills"`
}

// Patient is one synthetic demand point of an instance.
type Patient struct {
	ID            int          `json:"id"`
	Position      GeoPoint     `json:"position"`
	SectorID      string       `json:"sectorId,omitempty"`
	Modality      string       `json:"modality"` // AD2 or AD3
	Window        TimeWindow   `json:"window"`
	ServiceMin    int          `json:"serviceMin"`
	VisitsPerWeek int          `json:"visitsPerWeek"`
	RequiredSkill RoleCategory `json:"requiredSkill"`
	Priority      int          `json:"priority"`
}

// InstanceMetadata records how an instance was produced, enough to
// reproduce it exactly.
type InstanceMetadata struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Seed        int64             `json:"seed"`
	Region      string            `json:"region,omitempty"`
	Scenario    string            `json:"scenario"`
	SpeedKmh    float64           `json:"speedKmh"`
	NumDepots   int               `json:"numDepots"`
	NumPatients int               `json:"numPatients"`
	Sources     map[string]string `json:"sources,omitempty"`
}

// Instance is the artifact handed to the downstream routing solver.
// TravelMinutes is indexed depots first, then patients.
type Instance struct {
	Metadata      InstanceMetadata `json:"metadata"`
	Depots        []Depot          `json:"depots"`
	Patients      []Patient        `json:"patients"`
	TravelMinutes [][]float64      `json:"travelMinutes"`
}
