// Package willcontext derives the generation context from a normalized
// payload. Every derived flag and count is computed here and nowhere else;
// downstream stages read flags, they never re-derive them.
package willcontext

import "willgen/internal/will/payload"

// GiftType distinguishes the two kinds of specific gift.
type GiftType string

const (
	GiftCash GiftType = "cash"
	GiftItem GiftType = "item"
)

// SpecificGift is a cash or item gift extracted from the beneficiary list.
type SpecificGift struct {
	BeneficiaryID   string
	BeneficiaryName string
	GiftType        GiftType
	CashAmount      float64
	ItemDescription string
}

// ResidueBeneficiary is a beneficiary taking a share of the residue.
type ResidueBeneficiary struct {
	BeneficiaryID   string
	BeneficiaryName string
	SharePercent    *float64
}

// BusinessInterest is a business holding with its recipient resolved to a
// concrete name and address.
type BusinessInterest struct {
	InterestType     string
	EntityName       string
	ACN              string
	ABN              string
	RecipientMode    string
	RecipientID      string
	RecipientName    string
	RecipientAddress payload.Address
}

// Context is the complete input to clause resolution and rendering.
type Context struct {
	WillMaker       payload.WillMaker
	Partner         *payload.Partner
	Separation      *payload.Separation
	Children        []payload.Child
	OtherDependants []payload.Dependant
	Executors       []payload.Executor
	BackupExecutors []payload.Executor
	Guardian        *payload.Guardian
	BackupGuardian  *payload.Guardian
	Beneficiaries   []payload.Beneficiary

	SpecificGifts        []SpecificGift
	ResidueBeneficiaries []ResidueBeneficiary
	BusinessInterests    []BusinessInterest
	Exclusions           []payload.ExclusionEntry

	DistributionScheme       string
	SurvivorshipDays         int
	SubstitutionRule         string
	AlternateBeneficiaryID   string
	AlternateBeneficiaryName string

	MinorTrustsEnabled     bool
	MinorTrustsVestingAge  int
	MinorTrustsTrusteeMode string
	MinorTrustsTrustee     *payload.Executor

	FuneralEnabled    bool
	FuneralPreference string
	FuneralNotes      string

	DigitalAssetsEnabled              bool
	DigitalAssetsAuthority            bool
	DigitalAssetsCategories           []string
	DigitalAssetsInstructionsLocation string

	PetsEnabled     bool
	PetsCount       int
	PetsSummary     string
	PetsCarerMode   string
	PetsCarerName   string
	PetsCarerAddr   payload.Address
	PetsCashGift    *float64

	LifeSustainingEnabled  bool
	LifeSustainingTemplate string
	LifeSustainingValues   []string

	Assets              map[string]float64
	IntendedSigningDate string

	// Derived flags.
	HasPartner                bool
	HasChildren               bool
	HasMinorChildren          bool
	HasGuardianship           bool
	HasSpecificGifts          bool
	HasResidueScheme          bool
	HasPercentages            bool
	HasExclusions             bool
	HasDigitalAssets          bool
	HasPets                   bool
	HasBusinessInterests      bool
	HasFuneralWishes          bool
	HasLifeSustainingStatement bool
	HasMinorTrusts            bool
	HasSubstitution           bool
	HasAlternateBeneficiary   bool

	// Derived counts.
	BeneficiaryCount int
	PercentageSum    float64
	ExecutorCount    int
}

// Build derives the full generation context from a validated payload. It is
// pure and total: the same payload always yields the same context, and no
// validated payload can fail.
func Build(p *payload.Normalized) *Context {
	c := &Context{
		WillMaker:          p.WillMaker,
		DistributionScheme: p.Distribution.Scheme,
		SurvivorshipDays:   p.Survivorship.Days,
		Assets:             p.Assets,
	}

	c.HasPartner = isPartnered(p.WillMaker.RelationshipStatus)
	if c.HasPartner {
		c.Partner = p.Partner
	}
	if p.WillMaker.RelationshipStatus == "separated" {
		c.Separation = p.Separation
	}

	if p.HasChildren && len(p.Children) > 0 {
		c.Children = p.Children
		c.HasChildren = true
		for _, child := range p.Children {
			if child.IsExpectedToBeMinorAtDeath {
				c.HasMinorChildren = true
			}
		}
	}

	if p.Dependants.HasOtherDependants {
		c.OtherDependants = p.Dependants.OtherDependants
	}

	c.buildExecutors(p)
	c.buildGuardianship(p)
	c.buildBeneficiaries(p)
	c.buildSubstitution(p)
	c.buildMinorTrusts(p)
	c.buildToggles(p)

	c.IntendedSigningDate = p.Declarations.IntendedSigningDate
	c.ExecutorCount = len(c.Executors)

	return c
}

func isPartnered(status string) bool {
	return status == "married" || status == "de_facto"
}

func (c *Context) buildExecutors(p *payload.Normalized) {
	switch mode := p.Executors.Mode; {
	case mode == "partner_only" && c.Partner != nil:
		c.Executors = []payload.Executor{{
			FullName:     c.Partner.FullName,
			Relationship: "partner",
			Address:      c.Partner.Address,
			Phone:        c.Partner.Phone,
			Email:        c.Partner.Email,
		}}
	case mode == "one" || mode == "two_joint" || mode == "two_joint_and_several":
		c.Executors = p.Executors.Primary
	}

	switch mode := p.Executors.Backup.Mode; {
	case mode == "partner" && c.Partner != nil:
		c.BackupExecutors = []payload.Executor{{
			FullName:     c.Partner.FullName,
			Relationship: "partner",
			Address:      c.Partner.Address,
		}}
	case mode == "one" || mode == "two_joint" || mode == "two_joint_and_several":
		c.BackupExecutors = p.Executors.Backup.List
	}
}

func (c *Context) buildGuardianship(p *payload.Normalized) {
	g := p.Guardianship
	if !c.HasMinorChildren || g == nil || !g.AppointGuardian {
		return
	}
	c.Guardian = g.Guardian
	c.HasGuardianship = true
	if g.BackupGuardian != nil && g.BackupGuardian.FullName != "" {
		c.BackupGuardian = g.BackupGuardian
	}
}

func (c *Context) buildBeneficiaries(p *payload.Normalized) {
	c.Beneficiaries = p.Beneficiaries
	c.BeneficiaryCount = len(p.Beneficiaries)

	for _, b := range p.Beneficiaries {
		switch b.GiftRole {
		case "specific_cash":
			amount := 0.0
			if b.CashAmount != nil {
				amount = *b.CashAmount
			}
			c.SpecificGifts = append(c.SpecificGifts, SpecificGift{
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.FullName,
				GiftType:        GiftCash,
				CashAmount:      amount,
			})
			c.HasSpecificGifts = true
		case "specific_item":
			c.SpecificGifts = append(c.SpecificGifts, SpecificGift{
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.FullName,
				GiftType:        GiftItem,
				ItemDescription: b.ItemDescription,
			})
			c.HasSpecificGifts = true
		case "residue":
			c.ResidueBeneficiaries = append(c.ResidueBeneficiaries, ResidueBeneficiary{
				BeneficiaryID:   b.ID,
				BeneficiaryName: b.FullName,
				SharePercent:    b.ResidueSharePercent,
			})
		}

		if b.Percentage != nil {
			c.PercentageSum += *b.Percentage
		}
	}

	c.HasResidueScheme = len(c.ResidueBeneficiaries) > 0
	c.HasPercentages = c.PercentageSum > 0
}

func (c *Context) buildSubstitution(p *payload.Normalized) {
	c.SubstitutionRule = p.Substitution.Rule
	c.HasSubstitution = c.SubstitutionRule != ""

	if c.SubstitutionRule == "to_alternate_beneficiary" {
		c.AlternateBeneficiaryID = p.Substitution.AlternateBeneficiaryID
		c.HasAlternateBeneficiary = true
		if b := p.BeneficiaryByID(c.AlternateBeneficiaryID); b != nil {
			c.AlternateBeneficiaryName = b.FullName
		}
	}
}

func (c *Context) buildMinorTrusts(p *payload.Normalized) {
	mt := p.MinorTrusts
	if !mt.Enabled {
		return
	}
	c.MinorTrustsEnabled = true
	c.MinorTrustsVestingAge = mt.VestingAge
	c.MinorTrustsTrusteeMode = mt.TrusteeMode
	if mt.TrusteeMode == "named_trustee" {
		c.MinorTrustsTrustee = mt.Trustee
	}

	// The trusts clause only appears when someone could actually take under
	// it: a minor child, or any residue or percentage beneficiary.
	hasVestingTakers := false
	for _, b := range p.Beneficiaries {
		if b.GiftRole == "residue" || b.GiftRole == "percentage_only" {
			hasVestingTakers = true
			break
		}
	}
	c.HasMinorTrusts = c.HasMinorChildren || hasVestingTakers
}

func (c *Context) buildToggles(p *payload.Normalized) {
	t := p.Toggles

	if t.Funeral.Enabled {
		c.FuneralEnabled = true
		c.HasFuneralWishes = true
		c.FuneralPreference = t.Funeral.Preference
		c.FuneralNotes = t.Funeral.Notes
	}

	if t.DigitalAssets.Enabled {
		c.DigitalAssetsEnabled = true
		c.HasDigitalAssets = true
		c.DigitalAssetsAuthority = t.DigitalAssets.Authority
		c.DigitalAssetsCategories = t.DigitalAssets.Categories
		c.DigitalAssetsInstructionsLocation = t.DigitalAssets.InstructionsLocation
	}

	if t.Pets.Enabled {
		c.PetsEnabled = true
		c.HasPets = true
		c.PetsCount = t.Pets.Count
		c.PetsSummary = t.Pets.Summary
		c.PetsCarerMode = t.Pets.CarePersonMode
		c.PetsCashGift = t.Pets.CashGift

		switch t.Pets.CarePersonMode {
		case "select_beneficiary":
			if b := p.BeneficiaryByID(t.Pets.CareBeneficiaryID); b != nil {
				c.PetsCarerName = b.FullName
				c.PetsCarerAddr = b.Address
			}
		case "new_person":
			if t.Pets.Carer != nil {
				c.PetsCarerName = t.Pets.Carer.FullName
				c.PetsCarerAddr = t.Pets.Carer.Address
			}
		}
	}

	if t.Business.Enabled {
		c.HasBusinessInterests = true
		for _, bi := range t.Business.Interests {
			resolved := BusinessInterest{
				InterestType:  bi.InterestType,
				EntityName:    bi.EntityName,
				ACN:           bi.ACN,
				ABN:           bi.ABN,
				RecipientMode: bi.RecipientMode,
				RecipientID:   bi.RecipientID,
			}
			switch bi.RecipientMode {
			case "select_beneficiary":
				if b := p.BeneficiaryByID(bi.RecipientID); b != nil {
					resolved.RecipientName = b.FullName
					resolved.RecipientAddress = b.Address
				}
			case "new_person":
				if bi.Recipient != nil {
					resolved.RecipientName = bi.Recipient.FullName
					resolved.RecipientAddress = bi.Recipient.Address
				}
			}
			c.BusinessInterests = append(c.BusinessInterests, resolved)
		}
	}

	if t.Exclusion.Enabled {
		c.HasExclusions = true
		c.Exclusions = t.Exclusion.Exclusions
	}

	if t.LifeSustaining.Enabled {
		c.LifeSustainingEnabled = true
		c.HasLifeSustainingStatement = true
		c.LifeSustainingTemplate = t.LifeSustaining.Template
		c.LifeSustainingValues = t.LifeSustaining.Values
	}
}
