// Package compliance carries the legal disclaimer and governance metadata
// attached to every fused result.
package compliance

import "time"

// Disclaimer is appended verbatim to every orchestration response.
const Disclaimer = "AI guidance only. Not medical diagnosis."

// DefaultComplianceTag marks responses produced under the default data
// handling posture.
const DefaultComplianceTag = "DPDP-2023"

// Governance is the audit block of a fused response.
type Governance struct {
	ModelVersion  string `json:"model_version"`
	LatencyMS     int64  `json:"latency_ms"`
	ComplianceTag string `json:"compliance_tag"`
}

// NewGovernance stamps a governance block for one orchestration.
func NewGovernance(modelVersion, tag string, elapsed time.Duration) Governance {
	if tag == "" {
		tag = DefaultComplianceTag
	}
	return Governance{
		ModelVersion:  modelVersion,
		LatencyMS:     elapsed.Milliseconds(),
		ComplianceTag: tag,
	}
}
