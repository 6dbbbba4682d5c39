// Package clause holds the fixed clause catalogue and the resolver that
// selects which clauses appear in a generated will. Selection is driven
// entirely by context flags: the catalogue order is the single topological
// order, and the dependency table only prunes, it never reorders.
package clause

import "willgen/internal/will/willcontext"

// ID is a stable clause identifier.
type ID string

const (
	TitleIdentification          ID = "title_identification"
	Revocation                   ID = "revocation"
	Definitions                  ID = "definitions"
	AppointmentExecutorsTrustees ID = "appointment_executors_trustees"
	FuneralWishes                ID = "funeral_wishes"
	Guardianship                 ID = "guardianship"
	DistributionOverview         ID = "distribution_overview"
	SpecificGifts                ID = "specific_gifts"
	ResidueDistribution          ID = "residue_distribution"
	Survivorship                 ID = "survivorship"
	Substitution                 ID = "substitution"
	MinorTrusts                  ID = "minor_trusts"
	AdministrativePowers         ID = "administrative_powers"
	DigitalAssets                ID = "digital_assets"
	Pets                         ID = "pets"
	BusinessInterests            ID = "business_interests"
	ExclusionNote                ID = "exclusion_note"
	LifeSustainingStatement      ID = "life_sustaining_statement"
	Attestation                  ID = "attestation"
)

// Order is the fixed clause order. It never changes: every generated will
// presents its clauses in this relative order.
var Order = []ID{
	TitleIdentification,
	Revocation,
	Definitions,
	AppointmentExecutorsTrustees,
	FuneralWishes,
	Guardianship,
	DistributionOverview,
	SpecificGifts,
	ResidueDistribution,
	Survivorship,
	Substitution,
	MinorTrusts,
	AdministrativePowers,
	DigitalAssets,
	Pets,
	BusinessInterests,
	ExclusionNote,
	LifeSustainingStatement,
	Attestation,
}

// Dependency names the context flags that must all be true for a clause to
// be included. A clause with no required flags is unconditional.
type Dependency struct {
	ClauseID      ID
	RequiredFlags []string
	Notes         string
}

// Dependencies is the static dependency table, one entry per catalogue
// clause.
var Dependencies = map[ID]Dependency{
	TitleIdentification:          {ClauseID: TitleIdentification, Notes: "Always included"},
	Revocation:                   {ClauseID: Revocation, Notes: "Always included"},
	Definitions:                  {ClauseID: Definitions, Notes: "Always included"},
	AppointmentExecutorsTrustees: {ClauseID: AppointmentExecutorsTrustees, Notes: "Always included - every will needs executors"},
	FuneralWishes:                {ClauseID: FuneralWishes, RequiredFlags: []string{"has_funeral_wishes"}, Notes: "Only if funeral wishes toggle is enabled"},
	Guardianship:                 {ClauseID: Guardianship, RequiredFlags: []string{"has_guardianship"}, Notes: "Only if minor children exist and guardian is appointed"},
	DistributionOverview:         {ClauseID: DistributionOverview, Notes: "Included for complex distribution schemes"},
	SpecificGifts:                {ClauseID: SpecificGifts, RequiredFlags: []string{"has_specific_gifts"}, Notes: "Only if specific gifts exist"},
	ResidueDistribution:          {ClauseID: ResidueDistribution, Notes: "Always included - every will has residue"},
	Survivorship:                 {ClauseID: Survivorship, Notes: "Always included"},
	Substitution:                 {ClauseID: Substitution, RequiredFlags: []string{"has_substitution"}, Notes: "Only if substitution rule is configured"},
	MinorTrusts:                  {ClauseID: MinorTrusts, RequiredFlags: []string{"has_minor_trusts"}, Notes: "Only if minor trusts are enabled and applicable"},
	AdministrativePowers:         {ClauseID: AdministrativePowers, Notes: "Always included"},
	DigitalAssets:                {ClauseID: DigitalAssets, RequiredFlags: []string{"has_digital_assets"}, Notes: "Only if digital assets toggle is enabled"},
	Pets:                         {ClauseID: Pets, RequiredFlags: []string{"has_pets"}, Notes: "Only if pets toggle is enabled"},
	BusinessInterests:            {ClauseID: BusinessInterests, RequiredFlags: []string{"has_business_interests"}, Notes: "Only if business interests toggle is enabled"},
	ExclusionNote:                {ClauseID: ExclusionNote, RequiredFlags: []string{"has_exclusions"}, Notes: "Only if exclusion toggle is enabled"},
	LifeSustainingStatement:      {ClauseID: LifeSustainingStatement, RequiredFlags: []string{"has_life_sustaining_statement"}, Notes: "Only if life sustaining toggle is enabled"},
	Attestation:                  {ClauseID: Attestation, Notes: "Always included - must be last"},
}

var titles = map[ID]string{
	TitleIdentification:          "Title and Identification",
	Revocation:                   "Revocation of Previous Wills",
	Definitions:                  "Definitions and Interpretation",
	AppointmentExecutorsTrustees: "Appointment of Executors and Trustees",
	FuneralWishes:                "Funeral Wishes",
	Guardianship:                 "Appointment of Guardian",
	DistributionOverview:         "Distribution Plan Overview",
	SpecificGifts:                "Specific Gifts",
	ResidueDistribution:          "Distribution of Residue",
	Survivorship:                 "Survivorship Period",
	Substitution:                 "Substitution of Beneficiaries",
	MinorTrusts:                  "Trusts for Minor Beneficiaries",
	AdministrativePowers:         "Powers of Executors and Trustees",
	DigitalAssets:                "Digital Assets",
	Pets:                         "Provision for Pets",
	BusinessInterests:            "Business Interests",
	ExclusionNote:                "Exclusion Note",
	LifeSustainingStatement:      "Life Sustaining Treatment Statement",
	Attestation:                  "Attestation and Execution",
}

var descriptions = map[ID]string{
	TitleIdentification:          "Identifies the will maker and declares this document as their last will.",
	Revocation:                   "Revokes all previous wills and codicils.",
	Definitions:                  "Defines key terms used throughout the will.",
	AppointmentExecutorsTrustees: "Appoints executors and trustees to administer the estate.",
	FuneralWishes:                "Expresses preferences for funeral arrangements.",
	Guardianship:                 "Appoints a guardian for minor children.",
	DistributionOverview:         "Provides an overview of the distribution plan.",
	SpecificGifts:                "Details specific gifts of cash or property.",
	ResidueDistribution:          "Directs how the residue of the estate should be distributed.",
	Survivorship:                 "Specifies the period a beneficiary must survive the will maker.",
	Substitution:                 "Provides for substitution if a beneficiary predeceases.",
	MinorTrusts:                  "Establishes trusts for beneficiaries who are minors.",
	AdministrativePowers:         "Grants powers to executors and trustees.",
	DigitalAssets:                "Provides for management of digital assets.",
	Pets:                         "Makes provision for the care of pets.",
	BusinessInterests:            "Directs the disposition of business interests.",
	ExclusionNote:                "Notes exclusions and reasons for exclusion.",
	LifeSustainingStatement:      "Expresses wishes regarding life sustaining treatment.",
	Attestation:                  "Execution and witnessing provisions.",
}

// Title returns the display title for a clause.
func (id ID) Title() string { return titles[id] }

// Description returns a one-line summary of what the clause covers.
func (id ID) Description() string { return descriptions[id] }

// ContextFlags projects the context's derived booleans into the flag names
// used by the dependency table.
func ContextFlags(c *willcontext.Context) map[string]bool {
	return map[string]bool{
		"has_partner":                   c.HasPartner,
		"has_children":                  c.HasChildren,
		"has_minor_children":            c.HasMinorChildren,
		"has_guardianship":              c.HasGuardianship,
		"has_specific_gifts":            c.HasSpecificGifts,
		"has_residue_scheme":            c.HasResidueScheme,
		"has_percentages":               c.HasPercentages,
		"has_exclusions":                c.HasExclusions,
		"has_digital_assets":            c.HasDigitalAssets,
		"has_pets":                      c.HasPets,
		"has_business_interests":        c.HasBusinessInterests,
		"has_funeral_wishes":            c.HasFuneralWishes,
		"has_life_sustaining_statement": c.HasLifeSustainingStatement,
		"has_minor_trusts":              c.HasMinorTrusts,
		"has_substitution":              c.HasSubstitution,
		"has_alternate_beneficiary":     c.HasAlternateBeneficiary,
	}
}

// Included reports whether a clause's dependencies are satisfied by the
// given flag set.
func Included(id ID, flags map[string]bool) bool {
	dep, ok := Dependencies[id]
	if !ok {
		return false
	}
	for _, flag := range dep.RequiredFlags {
		if !flags[flag] {
			return false
		}
	}
	return true
}
