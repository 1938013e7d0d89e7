package domain

// RequirementType names a privacy requirement template.
type RequirementType string

// Privacy requirement types, in generation order.
const (
	RequirementUnlinkability        RequirementType = "unlinkability"
	RequirementAnonymity            RequirementType = "anonymity"
	RequirementPseudonym            RequirementType = "pseudonym"
	RequirementUndetectability      RequirementType = "undetectability"
	RequirementTransparency1        RequirementType = "transparency_1"
	RequirementTransparency2        RequirementType = "transparency_2"
	RequirementIntervenability1     RequirementType = "intervenability_1"
	RequirementIntervenability2     RequirementType = "intervenability_2"
	RequirementIntervenability3     RequirementType = "intervenability_3"
	RequirementConfidentiality      RequirementType = "confidentiality"
	RequirementPlausibleDeniability RequirementType = "plausible_deniability"
	RequirementContentAwareness     RequirementType = "content_awareness"
)

// AllRequirementTypes returns every requirement type in generation order.
func AllRequirementTypes() []RequirementType {
	return []RequirementType{
		RequirementUnlinkability,
		RequirementAnonymity,
		RequirementPseudonym,
		RequirementUndetectability,
		RequirementTransparency1,
		RequirementTransparency2,
		RequirementIntervenability1,
		RequirementIntervenability2,
		RequirementIntervenability3,
		RequirementConfidentiality,
		RequirementPlausibleDeniability,
		RequirementContentAwareness,
	}
}

// DataFlowTriple is one (external entity, process, data store) edge of a
// data-flow diagram. Triples are produced outside this module.
type DataFlowTriple struct {
	// Role is the external entity acting on the data.
	Role string

	// Processing is the process applied to the data.
	Processing string

	// PersonalData is the data store holding personal data.
	PersonalData string
}

// Requirement is a generated privacy requirement.
type Requirement struct {
	Type RequirementType
	Text string
}
