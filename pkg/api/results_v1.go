// pkg/api/results_v1.go
package api

// OutcomeV1 is the stable JSON/JSONL/YAML schema for one simulation job.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
// Exactly the blocks produced by the job's kind are present.
type OutcomeV1 struct {
	RunID      string  `json:"run_id" yaml:"run_id"`
	JobID      string  `json:"job_id" yaml:"job_id"`
	Kind       string  `json:"kind" yaml:"kind"`
	Seed       uint64  `json:"seed" yaml:"seed"`
	Status     string  `json:"status" yaml:"status"` // "ok" | "failed" | "error"
	Error      string  `json:"error,omitempty" yaml:"error,omitempty"`
	Stage      string  `json:"stage,omitempty" yaml:"stage,omitempty"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms"`

	Warnings []WarningV1 `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	Sites        []TargetSiteV1 `json:"sites,omitempty" yaml:"sites,omitempty"`
	Editing      *EditingV1     `json:"editing,omitempty" yaml:"editing,omitempty"`
	EditedLength int            `json:"edited_length,omitempty" yaml:"edited_length,omitempty"`
	Primers      []PrimerV1     `json:"primers,omitempty" yaml:"primers,omitempty"`
	PCR          *PCRV1         `json:"pcr,omitempty" yaml:"pcr,omitempty"`
	Sequencing   *SequencingV1  `json:"sequencing,omitempty" yaml:"sequencing,omitempty"`
	Variants     []VariantV1    `json:"variants,omitempty" yaml:"variants,omitempty"`
	Gel          *GelV1         `json:"gel,omitempty" yaml:"gel,omitempty"`
}

type WarningV1 struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

type TargetSiteV1 struct {
	Position      int     `json:"position" yaml:"position"`
	Protospacer   string  `json:"protospacer" yaml:"protospacer"`
	PAM           string  `json:"pam" yaml:"pam"`
	OnTargetScore float64 `json:"on_target_score" yaml:"on_target_score"`
	OffTargetRisk float64 `json:"off_target_risk" yaml:"off_target_risk"`
}

type EditOutcomeV1 struct {
	Kind        string `json:"kind" yaml:"kind"`
	Position    int    `json:"position" yaml:"position"`
	Size        int    `json:"size" yaml:"size"`
	Sequence    string `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Description string `json:"description" yaml:"description"`
	Frameshift  bool   `json:"frameshift" yaml:"frameshift"`
}

type EditingV1 struct {
	Site                TargetSiteV1       `json:"site" yaml:"site"`
	RepairPathway       string             `json:"repair_pathway" yaml:"repair_pathway"`
	Efficiency          float64            `json:"efficiency" yaml:"efficiency"`
	HasOffTargetEffects bool               `json:"off_target_effects" yaml:"off_target_effects"`
	Primary             EditOutcomeV1      `json:"primary" yaml:"primary"`
	Byproducts          []EditOutcomeV1    `json:"byproducts" yaml:"byproducts"`
	IndelFrequency      float64            `json:"indel_frequency" yaml:"indel_frequency"`
	FrameshiftFraction  float64            `json:"frameshift_fraction" yaml:"frameshift_fraction"`
	AverageIndelSize    float64            `json:"average_indel_size" yaml:"average_indel_size"`
	Mosaicism           float64            `json:"mosaicism" yaml:"mosaicism"`
	OutcomeDistribution map[string]float64 `json:"outcome_distribution,omitempty" yaml:"outcome_distribution,omitempty"`
}

type PrimerV1 struct {
	Sequence          string  `json:"sequence" yaml:"sequence"`
	Forward           bool    `json:"forward" yaml:"forward"`
	Position          int     `json:"position" yaml:"position"` // -1 when not designed against a genome
	Tm                float64 `json:"tm" yaml:"tm"`
	GC                float64 `json:"gc" yaml:"gc"`
	Specificity       float64 `json:"specificity" yaml:"specificity"`
	SelfComplementary bool    `json:"self_complementary,omitempty" yaml:"self_complementary,omitempty"`
	DimerRisk         bool    `json:"dimer_risk,omitempty" yaml:"dimer_risk,omitempty"`
}

type PCRV1 struct {
	Success             bool     `json:"success" yaml:"success"`
	Length              int      `json:"length" yaml:"length"`
	ForwardSite         int      `json:"forward_site" yaml:"forward_site"`
	ReverseSite         int      `json:"reverse_site" yaml:"reverse_site"`
	Yield               float64  `json:"yield" yaml:"yield"`
	CopyEstimate        float64  `json:"copy_estimate" yaml:"copy_estimate"`
	ErrorRate           float64  `json:"error_rate" yaml:"error_rate"`
	Mutations           []string `json:"mutations,omitempty" yaml:"mutations,omitempty"`
	Specificity         float64  `json:"specificity" yaml:"specificity"`
	HasPrimerDimers     bool     `json:"primer_dimers" yaml:"primer_dimers"`
	HasNonSpecificBands bool     `json:"non_specific_bands" yaml:"non_specific_bands"`
	EstimatedPurity     float64  `json:"estimated_purity" yaml:"estimated_purity"`
	Amplicon            string   `json:"amplicon,omitempty" yaml:"amplicon,omitempty"`
}

type SequencingStatsV1 struct {
	TotalReads        int     `json:"total_reads" yaml:"total_reads"`
	TotalBases        int     `json:"total_bases" yaml:"total_bases"`
	MeanReadLength    float64 `json:"mean_read_length" yaml:"mean_read_length"`
	MeanQuality       float64 `json:"mean_quality" yaml:"mean_quality"`
	MedianReadQuality float64 `json:"median_read_quality" yaml:"median_read_quality"`
	Q30Percentage     float64 `json:"q30_pct" yaml:"q30_pct"`
	CoverageDepth     float64 `json:"coverage" yaml:"coverage"`
	GCContent         float64 `json:"gc" yaml:"gc"`
	EstimatedVariants int     `json:"estimated_variants" yaml:"estimated_variants"`
	N50               int     `json:"n50" yaml:"n50"`
}

type ReadV1 struct {
	ID       string `json:"id" yaml:"id"`
	Position int    `json:"position" yaml:"position"`
	Reversed bool   `json:"reversed,omitempty" yaml:"reversed,omitempty"`
	MateID   string `json:"mate_id,omitempty" yaml:"mate_id,omitempty"`
	Sequence string `json:"sequence" yaml:"sequence"`
	Quality  string `json:"quality" yaml:"quality"` // Phred+33
}

type SequencingV1 struct {
	Success     bool              `json:"success" yaml:"success"`
	Technology  string            `json:"technology" yaml:"technology"`
	RegionStart int               `json:"region_start" yaml:"region_start"`
	RegionLen   int               `json:"region_length" yaml:"region_length"`
	Stats       SequencingStatsV1 `json:"stats" yaml:"stats"`
	Reads       []ReadV1          `json:"reads,omitempty" yaml:"reads,omitempty"`
}

type VariantV1 struct {
	Position        int     `json:"position" yaml:"position"`
	Ref             string  `json:"ref" yaml:"ref"`
	Alt             string  `json:"alt" yaml:"alt"`
	Type            string  `json:"type" yaml:"type"`
	Depth           int     `json:"depth" yaml:"depth"`
	AlleleFrequency float64 `json:"allele_frequency" yaml:"allele_frequency"`
	Quality         float64 `json:"quality" yaml:"quality"`
}

type BandV1 struct {
	Migration     float64 `json:"migration" yaml:"migration"`
	EstimatedSize int     `json:"estimated_size" yaml:"estimated_size"`
	Intensity     float64 `json:"intensity" yaml:"intensity"`
	Sharp         bool    `json:"sharp" yaml:"sharp"`
	Annotation    string  `json:"annotation,omitempty" yaml:"annotation,omitempty"`
}

type LaneV1 struct {
	Name  string   `json:"name" yaml:"name"`
	Bands []BandV1 `json:"bands" yaml:"bands"`
}

type GelV1 struct {
	Success         bool     `json:"success" yaml:"success"`
	Percent         float64  `json:"percent" yaml:"percent"`
	RunTime         float64  `json:"run_time_min" yaml:"run_time_min"`
	Voltage         float64  `json:"voltage" yaml:"voltage"`
	GelLengthMM     int      `json:"gel_length_mm" yaml:"gel_length_mm"`
	Lanes           []LaneV1 `json:"lanes" yaml:"lanes"`
	Interpretations []string `json:"interpretations,omitempty" yaml:"interpretations,omitempty"`
	Sharpness       float64  `json:"sharpness" yaml:"sharpness"`
	Smearing        bool     `json:"smearing" yaml:"smearing"`
	Overloading     bool     `json:"overloading" yaml:"overloading"`
	OverallQuality  float64  `json:"overall_quality" yaml:"overall_quality"`
}

// ErrorV1 is the body of a non-2xx HTTP response.
type ErrorV1 struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"` // "invalid_input" | "invalid_region" | "invalid_sequence" | "unsupported_pam" | "internal"
}
