package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
)

// Ensure RequirementService implements the interface.
var _ driving.RequirementService = (*RequirementService)(nil)

// requirementTemplates render a triple into requirement text.
var requirementTemplates = map[domain.RequirementType]func(t domain.DataFlowTriple) string{
	domain.RequirementUnlinkability: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want the %s data that used in %s to be protected from being linked "+
			"directly or indirectly to other personal data within or outside of our system, so that an attacker "+
			"cannot link it to the identity of subject in %s data", t.Role, t.PersonalData, t.Processing, t.PersonalData)
	},
	domain.RequirementAnonymity: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want that the %s data to be anonymized when performing %s data, so that "+
			"unwanted actors cannot directly or indirectly identify subject in %s data.",
			t.Role, t.PersonalData, t.Processing, t.PersonalData)
	},
	domain.RequirementPseudonym: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want that the %s data to be pseudonymized when performing %s data, so that "+
			"unwanted actors cannot directly or indirectly identify subject in %s data.",
			t.Role, t.PersonalData, t.Processing, t.PersonalData)
	},
	domain.RequirementUndetectability: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want unwanted actors to be unable to sufficiently distinguish whether or "+
			"not %s data is present, so that I can safely perform %s", t.Role, t.PersonalData, t.Processing)
	},
	domain.RequirementTransparency1: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to be informed and consented that the %s data is used in %s, so that "+
			"I can exercise my rights when it is used outside of this context.", t.Role, t.PersonalData, t.Processing)
	},
	domain.RequirementTransparency2: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to download a copy of %s data that used in %s at camp, so that I can "+
			"check their correctness.", t.Role, t.PersonalData, t.Processing)
	},
	domain.RequirementIntervenability1: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to be able to modify the %s data that have been processed at %s "+
			"without undue delay, so that I can prevent the inaccuracy of data.", t.Role, t.PersonalData, t.Processing)
	},
	domain.RequirementIntervenability2: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to be able to delete the %s data that have been processed at %s "+
			"without undue delay, so that I can exercise my right.", t.Role, t.PersonalData, t.Processing)
	},
	domain.RequirementIntervenability3: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to withdraw my consent on the processing of %s on the %s data, so "+
			"that I can exercise my right.", t.Role, t.Processing, t.PersonalData)
	},
	domain.RequirementConfidentiality: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want the %s data that processed in %s to be kept confidential, so that "+
			"unwanted actors are unable to negatively influence the consistency, correctness, and availability "+
			"of that data", t.Role, t.PersonalData, t.Processing)
	},
	domain.RequirementPlausibleDeniability: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to have the ability to deny performing %s on %s data, so that "+
			"unwanted actors unable to accuse me of doing such a thing.", t.Role, t.Processing, t.PersonalData)
	},
	domain.RequirementContentAwareness: func(t domain.DataFlowTriple) string {
		return fmt.Sprintf("As a %s, I want to be informed that I should not share the %s data outside of the "+
			"platform, so that my privacy or data subject in %s data is not compromised.",
			t.Role, t.PersonalData, t.PersonalData)
	},
}

// RequirementService generates privacy requirements from data-flow triples.
type RequirementService struct{}

// NewRequirementService creates a requirement service.
func NewRequirementService() *RequirementService {
	return &RequirementService{}
}

// Generate returns one requirement per type in domain.AllRequirementTypes order.
// Every triple element must be non-blank.
func (s *RequirementService) Generate(triple domain.DataFlowTriple) ([]domain.Requirement, error) {
	triple = domain.DataFlowTriple{
		Role:         strings.TrimSpace(triple.Role),
		Processing:   strings.TrimSpace(triple.Processing),
		PersonalData: strings.TrimSpace(triple.PersonalData),
	}
	if triple.Role == "" || triple.Processing == "" || triple.PersonalData == "" {
		return nil, fmt.Errorf("%w: role, processing and personal data are required", domain.ErrInvalidInput)
	}

	types := domain.AllRequirementTypes()
	reqs := make([]domain.Requirement, len(types))
	for i, t := range types {
		reqs[i] = domain.Requirement{Type: t, Text: requirementTemplates[t](triple)}
	}
	return reqs, nil
}
