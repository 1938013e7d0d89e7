package driving

import "github.com/custodia-labs/ppltr/internal/core/domain"

// RequirementService turns data-flow triples into privacy requirement texts.
type RequirementService interface {
	// Generate returns one requirement per type, in domain.AllRequirementTypes order.
	Generate(triple domain.DataFlowTriple) ([]domain.Requirement, error)
}
