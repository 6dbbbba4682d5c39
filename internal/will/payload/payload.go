// Package payload defines the typed projection of an intake submission.
//
// Raw is the untyped form as posted by the intake form; Normalized is what
// the validator produces after coercion, sanitization, and consistency
// checks. Downstream stages only ever see Normalized.
package payload

// Raw is the untyped nested payload as decoded from the request body.
type Raw = map[string]any

// Address is a structured Queensland street address.
type Address struct {
	Street   string `json:"street"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

// Eligibility holds the three gating confirmations from section A.
type Eligibility struct {
	ConfirmAgeOver18      bool `json:"confirm_age_over_18"`
	ConfirmQLD            bool `json:"confirm_qld"`
	ConfirmNotLegalAdvice bool `json:"confirm_not_legal_advice"`
}

// WillMaker holds the will maker's identifying details (section B).
type WillMaker struct {
	FullName           string  `json:"full_name"`
	DOB                string  `json:"dob"`
	Occupation         string  `json:"occupation"`
	Address            Address `json:"address"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	RelationshipStatus string  `json:"relationship_status"`
}

// Partner holds partner details, present only for partnered statuses.
type Partner struct {
	FullName string  `json:"full_name"`
	DOB      string  `json:"dob,omitempty"`
	Address  Address `json:"address"`
	Email    string  `json:"email,omitempty"`
	Phone    string  `json:"phone,omitempty"`
}

// Separation holds separation details, present only when separated.
type Separation struct {
	IsLegallySeparated   bool `json:"is_legally_separated"`
	HasPropertyAgreement bool `json:"has_property_agreement"`
}

// Child is one entry in the children list (section C).
type Child struct {
	FullName                    string `json:"full_name"`
	DOB                         string `json:"dob"`
	RelationshipType            string `json:"relationship_type"`
	IsExpectedToBeMinorAtDeath  bool   `json:"is_expected_to_be_minor_at_death"`
	SpecialNeeds                bool   `json:"special_needs"`
}

// Dependant is a non-child dependant.
type Dependant struct {
	FullName             string `json:"full_name"`
	RelationshipCategory string `json:"relationship_category"`
}

// Dependants groups the other-dependants sub-section.
type Dependants struct {
	HasOtherDependants bool        `json:"has_other_dependants"`
	OtherDependants    []Dependant `json:"other_dependants,omitempty"`
}

// Executor is one appointed executor (section D).
type Executor struct {
	FullName     string  `json:"full_name"`
	Relationship string  `json:"relationship"`
	Address      Address `json:"address"`
	Phone        string  `json:"phone,omitempty"`
	Email        string  `json:"email,omitempty"`
}

// BackupExecutors holds the substitute executor arrangement.
type BackupExecutors struct {
	Mode string     `json:"mode"`
	List []Executor `json:"list,omitempty"`
}

// Executors groups the executor appointment section.
type Executors struct {
	Mode    string          `json:"mode"`
	Primary []Executor      `json:"primary,omitempty"`
	Backup  BackupExecutors `json:"backup"`
}

// Guardian is an appointed guardian for minor children (section E).
type Guardian struct {
	FullName     string  `json:"full_name"`
	Relationship string  `json:"relationship"`
	Address      Address `json:"address"`
	Phone        string  `json:"phone,omitempty"`
}

// Guardianship groups the guardianship section; present only when the
// payload reports minor children.
type Guardianship struct {
	AppointGuardian bool      `json:"appoint_guardian"`
	Guardian        *Guardian `json:"guardian,omitempty"`
	BackupGuardian  *Guardian `json:"backup_guardian,omitempty"`
}

// Distribution holds the chosen distribution scheme (section F).
type Distribution struct {
	Scheme string `json:"scheme"`
}

// Beneficiary is one beneficiary entry. The gift role decides which of the
// optional amount fields carry meaning.
type Beneficiary struct {
	ID                  string   `json:"id"`
	Type                string   `json:"type"`
	FullName            string   `json:"full_name"`
	Relationship        string   `json:"relationship,omitempty"`
	Address             Address  `json:"address,omitempty"`
	ABN                 string   `json:"abn,omitempty"`
	GiftRole            string   `json:"gift_role"`
	CashAmount          *float64 `json:"cash_amount,omitempty"`
	ItemDescription     string   `json:"item_description,omitempty"`
	Percentage          *float64 `json:"percentage,omitempty"`
	ResidueSharePercent *float64 `json:"residue_share_percent,omitempty"`
}

// Survivorship holds the survivorship period selection.
type Survivorship struct {
	Days int `json:"days"`
}

// Substitution holds the predeceased-beneficiary rule.
type Substitution struct {
	Rule                   string `json:"rule"`
	AlternateBeneficiaryID string `json:"alternate_beneficiary_id,omitempty"`
}

// MinorTrusts holds the trusts-for-minors configuration.
type MinorTrusts struct {
	Enabled     bool      `json:"enabled"`
	VestingAge  int       `json:"vesting_age,omitempty"`
	TrusteeMode string    `json:"trustee_mode,omitempty"`
	Trustee     *Executor `json:"trustee,omitempty"`
}

// Funeral is the funeral wishes toggle (section G).
type Funeral struct {
	Enabled    bool   `json:"enabled"`
	Preference string `json:"preference,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// DigitalAssets is the digital assets toggle.
type DigitalAssets struct {
	Enabled              bool     `json:"enabled"`
	Authority            bool     `json:"authority,omitempty"`
	Categories           []string `json:"categories,omitempty"`
	InstructionsLocation string   `json:"instructions_location,omitempty"`
}

// Pets is the pets toggle.
type Pets struct {
	Enabled           bool     `json:"enabled"`
	Count             int      `json:"count,omitempty"`
	Summary           string   `json:"summary,omitempty"`
	CarePersonMode    string   `json:"care_person_mode,omitempty"`
	CareBeneficiaryID string   `json:"care_beneficiary_id,omitempty"`
	Carer             *Person  `json:"carer,omitempty"`
	CashGift          *float64 `json:"cash_gift,omitempty"`
}

// Person is a minimal named person with an address.
type Person struct {
	FullName string  `json:"full_name"`
	Address  Address `json:"address"`
}

// BusinessInterest is one entry of the business toggle.
type BusinessInterest struct {
	InterestType  string  `json:"interest_type"`
	EntityName    string  `json:"entity_name"`
	ACN           string  `json:"acn,omitempty"`
	ABN           string  `json:"abn,omitempty"`
	RecipientMode string  `json:"recipient_mode"`
	RecipientID   string  `json:"recipient_id,omitempty"`
	Recipient     *Person `json:"recipient,omitempty"`
}

// Business is the business interests toggle.
type Business struct {
	Enabled   bool               `json:"enabled"`
	Interests []BusinessInterest `json:"interests,omitempty"`
}

// ExclusionEntry names a person deliberately left out of the will.
type ExclusionEntry struct {
	PersonName string   `json:"person_name"`
	Category   string   `json:"category"`
	Reasons    []string `json:"reasons"`
	OtherNote  string   `json:"other_note,omitempty"`
}

// Exclusion is the exclusions toggle.
type Exclusion struct {
	Enabled    bool             `json:"enabled"`
	Exclusions []ExclusionEntry `json:"exclusions,omitempty"`
}

// LifeSustaining is the life sustaining treatment toggle.
type LifeSustaining struct {
	Enabled  bool     `json:"enabled"`
	Template string   `json:"template,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// Toggles groups the optional clause toggles (section G).
type Toggles struct {
	Funeral        Funeral        `json:"funeral"`
	DigitalAssets  DigitalAssets  `json:"digital_assets"`
	Pets           Pets           `json:"pets"`
	Business       Business       `json:"business"`
	Exclusion      Exclusion      `json:"exclusion"`
	LifeSustaining LifeSustaining `json:"life_sustaining"`
}

// Declarations holds the final review confirmations (section I).
type Declarations struct {
	ConfirmReviewed       bool   `json:"confirm_reviewed"`
	ConfirmComplexAdvice  bool   `json:"confirm_complex_advice"`
	ConfirmSuperAndJoint  bool   `json:"confirm_super_and_joint"`
	ConfirmSigningWitness bool   `json:"confirm_signing_witness"`
	IntendedSigningDate   string `json:"intended_signing_date,omitempty"`
}

// Normalized is the fully typed, internally consistent payload produced by
// the validator. Every required field is present and well-typed; every enum
// holds a member of its closed set; cross-section rules hold.
type Normalized struct {
	Eligibility   Eligibility        `json:"eligibility"`
	WillMaker     WillMaker          `json:"will_maker"`
	Partner       *Partner           `json:"partner,omitempty"`
	Separation    *Separation        `json:"separation,omitempty"`
	HasChildren   bool               `json:"has_children"`
	Children      []Child            `json:"children,omitempty"`
	Dependants    Dependants         `json:"dependants"`
	Executors     Executors          `json:"executors"`
	Guardianship  *Guardianship      `json:"guardianship,omitempty"`
	Distribution  Distribution       `json:"distribution"`
	Beneficiaries []Beneficiary      `json:"beneficiaries"`
	Survivorship  Survivorship       `json:"survivorship"`
	Substitution  Substitution       `json:"substitution"`
	MinorTrusts   MinorTrusts        `json:"minor_trusts"`
	Toggles       Toggles            `json:"toggles"`
	Assets        map[string]float64 `json:"assets,omitempty"`
	Declarations  Declarations       `json:"declarations"`
}

// BeneficiaryByID returns the beneficiary with the given ID, or nil.
func (n *Normalized) BeneficiaryByID(id string) *Beneficiary {
	for i := range n.Beneficiaries {
		if n.Beneficiaries[i].ID == id {
			return &n.Beneficiaries[i]
		}
	}
	return nil
}
