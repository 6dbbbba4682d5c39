package validation

import "regexp"

// Field size and count limits.
const (
	MaxNameLength    = 100
	MaxTextLength    = 500
	MaxAddressLength = 200
	MaxCashGift      = 100_000_000 // $100M cap
	MaxPets          = 10
	MaxChildren      = 20
	MaxBeneficiaries = 50
	MaxDependants    = 10
	MaxEmailLength   = 254
)

// Wire format patterns. Postcode and ABN/ACN follow Australian conventions.
var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^[0-9\s\-+()]{8,20}$`)
	postcodePattern = regexp.MustCompile(`^\d{4}$`)
	abnPattern      = regexp.MustCompile(`^\d{11}$`)
	acnPattern      = regexp.MustCompile(`^\d{9}$`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// Closed enum value sets, strictly enforced.
var (
	RelationshipStatuses = []string{"single", "married", "de_facto", "separated", "divorced", "widowed"}
	PartneredStatuses    = []string{"married", "de_facto"}

	ExecutorModes       = []string{"partner_only", "one", "two_joint", "two_joint_and_several"}
	BackupExecutorModes = []string{"none", "partner", "one", "two_joint", "two_joint_and_several"}

	DistributionSchemes = []string{
		"partner_then_children_equal",
		"children_equal",
		"percentages_named",
		"specific_gifts_then_residue",
		"custom_structured",
	}

	BeneficiaryTypes   = []string{"individual", "charity"}
	GiftRoles          = []string{"residue", "specific_cash", "specific_item", "percentage_only"}
	ChildRelationships = []string{"biological", "adopted", "stepchild", "dependent_other"}

	SurvivorshipDays = []int{0, 7, 14, 30, 60}

	SubstitutionRules = []string{"to_their_children", "redistribute_among_remaining", "to_alternate_beneficiary"}

	MinorTrustVestingAges  = []int{18, 21, 25}
	MinorTrustTrusteeModes = []string{"executors_as_trustees", "named_trustee"}

	FuneralPreferences     = []string{"burial", "cremation", "no_preference"}
	DigitalAssetCategories = []string{"email", "social_media", "cloud_storage", "crypto"}
	PetCareModes           = []string{"select_beneficiary", "new_person"}
	RecipientModes         = []string{"select_beneficiary", "new_person"}
	BusinessInterestTypes  = []string{"sole_trader", "company_shareholding", "partnership", "trust_interest"}
	ExclusionCategories    = []string{"former_partner", "child", "stepchild", "dependant_other"}
	ExclusionReasons       = []string{"already_provided_for", "estrangement", "financial_independence", "other_structured"}

	LifeSustainingTemplates = []string{
		"comfort_and_dignity_prioritised",
		"palliative_only_in_terminal_or_permanent_unconsciousness",
		"prolong_life_if_reasonable",
	}
	LifeSustainingValues = []string{"comfort", "dignity", "palliative_care", "avoid_burdensome_treatment"}

	assetTypes = []string{"real_property", "bank", "superannuation", "investments", "vehicles", "business", "other"}
)

func isPartnered(status string) bool {
	return status == "married" || status == "de_facto"
}
