package simerr

// Code classifies a non-fatal condition attached to a result.
type Code string

const (
	PrimerBindingNotFound    Code = "PrimerBindingNotFound"
	AmpliconTooLong          Code = "AmpliconTooLong"
	LowCoverage              Code = "LowCoverage"
	LowQuality               Code = "LowQuality"
	UnusualGcContent         Code = "UnusualGcContent"
	PrimerTmMismatch         Code = "PrimerTmMismatch"
	PrimerDimer              Code = "PrimerDimer"
	NonSpecificAmplification Code = "NonSpecificAmplification"
	PolymeraseErrors         Code = "PolymeraseErrors"
	NoSamples                Code = "NoSamples"
	FragmentDropped          Code = "FragmentDropped"
)

// Warning is a host-visible, non-fatal diagnostic.
type Warning struct {
	Code    Code   `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string { return string(w.Code) + ": " + w.Message }

// Warn builds a Warning.
func Warn(c Code, msg string) Warning { return Warning{Code: c, Message: msg} }

// Has reports whether ws contains a warning with code c.
func Has(ws []Warning, c Code) bool {
	for _, w := range ws {
		if w.Code == c {
			return true
		}
	}
	return false
}
