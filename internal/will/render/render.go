package render

import (
	"errors"
	"fmt"

	"willgen/internal/will/clause"
	"willgen/internal/will/willcontext"
)

// ErrMissingData marks a rendering failure caused by an included clause
// whose required context data is absent. The resolver should make this
// impossible; hitting it is a defect, not a user error.
var ErrMissingData = errors.New("required clause data missing")

func missing(id clause.ID, what string) error {
	return fmt.Errorf("%s clause: %s: %w", id, what, ErrMissingData)
}

type builder func(*willcontext.Context) ([]Block, error)

var builders = map[clause.ID]builder{
	clause.TitleIdentification:          buildTitleIdentification,
	clause.Revocation:                   buildRevocation,
	clause.Definitions:                  buildDefinitions,
	clause.AppointmentExecutorsTrustees: buildAppointmentExecutors,
	clause.FuneralWishes:                buildFuneralWishes,
	clause.Guardianship:                 buildGuardianship,
	clause.DistributionOverview:         buildDistributionOverview,
	clause.SpecificGifts:                buildSpecificGifts,
	clause.ResidueDistribution:          buildResidueDistribution,
	clause.Survivorship:                 buildSurvivorship,
	clause.Substitution:                 buildSubstitution,
	clause.MinorTrusts:                  buildMinorTrusts,
	clause.AdministrativePowers:         buildAdministrativePowers,
	clause.DigitalAssets:                buildDigitalAssets,
	clause.Pets:                         buildPets,
	clause.BusinessInterests:            buildBusinessInterests,
	clause.ExclusionNote:                buildExclusionNote,
	clause.LifeSustainingStatement:      buildLifeSustaining,
	clause.Attestation:                  buildAttestation,
}

// Render produces the ordered clause content for a resolved plan. The block
// sequence is fully determined by (plan, context): no clock, no randomness,
// no map iteration affects output order.
func Render(plan *clause.Plan, c *willcontext.Context) ([]Clause, error) {
	out := make([]Clause, 0, len(plan.Clauses))

	for i, id := range plan.Clauses {
		build, ok := builders[id]
		if !ok {
			return nil, missing(id, "no builder registered")
		}
		blocks, err := build(c)
		if err != nil {
			return nil, err
		}
		out = append(out, Clause{
			ID:     id,
			Number: i + 1,
			Title:  id.Title(),
			Blocks: blocks,
		})
	}

	return out, nil
}

func buildTitleIdentification(c *willcontext.Context) ([]Block, error) {
	if c.WillMaker.FullName == "" {
		return nil, missing(clause.TitleIdentification, "will maker name")
	}
	return []Block{
		{Type: BlockHeading1, Text: "LAST WILL AND TESTAMENT"},
		paragraph(fmt.Sprintf(
			"I, %s, of %s, %s, revoke all former wills and codicils made by me and declare this to be my Last Will and Testament.",
			c.WillMaker.FullName, c.WillMaker.Address.SingleLine(), c.WillMaker.Occupation)),
	}, nil
}

func buildRevocation(*willcontext.Context) ([]Block, error) {
	return []Block{
		paragraph("I revoke all wills and codicils previously made by me."),
	}, nil
}

func buildDefinitions(c *willcontext.Context) ([]Block, error) {
	blocks := []Block{
		paragraph("In this Will, unless the context otherwise requires:"),
	}

	definitions := []Definition{
		{Term: `"Beneficiary"`, Definition: "means a person or entity entitled to receive a gift under this Will."},
		{Term: `"Child"`, Definition: "includes a biological child, adopted child, and stepchild."},
		{Term: `"Estate"`, Definition: "means all property and assets which I own at my death."},
		{Term: `"Executor"`, Definition: "means the person or persons appointed to administer my Estate."},
		{Term: `"Minor"`, Definition: "means a person under the age of 18 years."},
		{Term: `"Residue"`, Definition: "means what remains of my Estate after payment of debts, funeral and testamentary expenses, and all specific gifts."},
		{Term: `"Survivorship Period"`, Definition: fmt.Sprintf("means the period of %d days from my death.", c.SurvivorshipDays)},
	}
	for i := range definitions {
		blocks = append(blocks, Block{Type: BlockBulletItem, Definition: &definitions[i], Indent: 1})
	}

	return blocks, nil
}

func buildAppointmentExecutors(c *willcontext.Context) ([]Block, error) {
	var blocks []Block

	if len(c.Executors) > 0 {
		var text string
		if len(c.Executors) == 1 {
			e := c.Executors[0]
			text = fmt.Sprintf("I appoint %s, of %s, to be the Executor and Trustee of my Estate.",
				e.FullName, e.Address.SingleLine())
		} else {
			names := make([]string, len(c.Executors))
			for i, e := range c.Executors {
				names[i] = e.FullName
			}
			text = fmt.Sprintf("I appoint %s to be the Executors and Trustees of my Estate.", JoinNames(names))
		}
		blocks = append(blocks, paragraph(text))
	}

	if len(c.BackupExecutors) > 0 {
		var text string
		if len(c.BackupExecutors) == 1 {
			b := c.BackupExecutors[0]
			text = fmt.Sprintf(
				"If my appointed Executor is unable or unwilling to act, I appoint %s, of %s, to be the substitute Executor and Trustee.",
				b.FullName, b.Address.SingleLine())
		} else {
			names := make([]string, len(c.BackupExecutors))
			for i, b := range c.BackupExecutors {
				names[i] = b.FullName
			}
			text = fmt.Sprintf(
				"If any of my appointed Executors is unable or unwilling to act, I appoint %s to be the substitute Executors and Trustees.",
				JoinNames(names))
		}
		blocks = append(blocks, paragraph(text))
	}

	return blocks, nil
}

func buildFuneralWishes(c *willcontext.Context) ([]Block, error) {
	preferences := map[string]string{
		"burial":        "burial",
		"cremation":     "cremation",
		"no_preference": "no preference as to burial or cremation",
	}
	preference, ok := preferences[c.FuneralPreference]
	if !ok {
		preference = "no preference"
	}

	text := fmt.Sprintf("I express the wish that my body be disposed of by %s.", preference)
	if c.FuneralNotes != "" {
		text += " " + c.FuneralNotes
	}

	return []Block{paragraph(text)}, nil
}

func buildGuardianship(c *willcontext.Context) ([]Block, error) {
	if c.Guardian == nil {
		return nil, missing(clause.Guardianship, "guardian")
	}

	blocks := []Block{
		paragraph(fmt.Sprintf(
			"If at my death any of my children are minors, I appoint %s, of %s, to be the guardian of such minor children.",
			c.Guardian.FullName, c.Guardian.Address.SingleLine())),
	}

	if c.BackupGuardian != nil {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"If %s is unable or unwilling to act as guardian, I appoint %s, of %s, to be the substitute guardian.",
			c.Guardian.FullName, c.BackupGuardian.FullName, c.BackupGuardian.Address.SingleLine())))
	}

	return blocks, nil
}

func buildDistributionOverview(c *willcontext.Context) ([]Block, error) {
	schemes := map[string]string{
		"partner_then_children_equal": "My Estate shall be distributed first to my partner, and if my partner does not survive me, equally among my children.",
		"children_equal":              "My Estate shall be distributed equally among my children.",
		"percentages_named":           "My Estate shall be distributed among the named beneficiaries in the percentages specified.",
		"specific_gifts_then_residue": "I make specific gifts as detailed below, and the residue of my Estate shall be distributed as specified.",
		"custom_structured":           "My Estate shall be distributed according to the following structured plan.",
	}
	text, ok := schemes[c.DistributionScheme]
	if !ok {
		text = "My Estate shall be distributed as specified in this Will."
	}

	return []Block{paragraph(text)}, nil
}

func buildSpecificGifts(c *willcontext.Context) ([]Block, error) {
	if len(c.SpecificGifts) == 0 {
		return nil, missing(clause.SpecificGifts, "specific gifts")
	}

	blocks := []Block{paragraph("I give the following specific gifts:")}
	for i, gift := range c.SpecificGifts {
		var text string
		if gift.GiftType == willcontext.GiftCash {
			text = fmt.Sprintf("%d. To %s, the sum of %s.", i+1, gift.BeneficiaryName, Currency(gift.CashAmount))
		} else {
			text = fmt.Sprintf("%d. To %s, my %s.", i+1, gift.BeneficiaryName, gift.ItemDescription)
		}
		blocks = append(blocks, numbered(text))
	}

	return blocks, nil
}

func buildResidueDistribution(c *willcontext.Context) ([]Block, error) {
	switch len(c.ResidueBeneficiaries) {
	case 0:
		return []Block{
			paragraph("I give the residue of my Estate to my executors upon the trusts hereinafter declared."),
		}, nil
	case 1:
		b := c.ResidueBeneficiaries[0]
		text := fmt.Sprintf("I give the residue of my Estate to %s.", b.BeneficiaryName)
		if b.SharePercent != nil && *b.SharePercent != 100 {
			text = fmt.Sprintf("I give %s of the residue of my Estate to %s.",
				Percentage(*b.SharePercent), b.BeneficiaryName)
		}
		return []Block{paragraph(text)}, nil
	default:
		blocks := []Block{paragraph("I give the residue of my Estate as follows:")}
		for i, b := range c.ResidueBeneficiaries {
			share := 100.0 / float64(len(c.ResidueBeneficiaries))
			if b.SharePercent != nil {
				share = *b.SharePercent
			}
			blocks = append(blocks, numbered(fmt.Sprintf("%d. %s to %s", i+1, Percentage(share), b.BeneficiaryName)))
		}
		return blocks, nil
	}
}

func buildSurvivorship(c *willcontext.Context) ([]Block, error) {
	if c.SurvivorshipDays == 0 {
		return []Block{
			paragraph("A beneficiary under this Will must survive me to take a gift. No survivorship period applies."),
		}, nil
	}
	return []Block{
		paragraph(fmt.Sprintf(
			"A beneficiary under this Will must survive me by %d days to take a gift under this Will. If a beneficiary does not survive me by this period, they shall be treated as having predeceased me.",
			c.SurvivorshipDays)),
	}, nil
}

func buildSubstitution(c *willcontext.Context) ([]Block, error) {
	var text string
	switch c.SubstitutionRule {
	case "to_their_children":
		text = "If a beneficiary predeceases me, their share shall pass to their children who survive me, in equal shares."
	case "redistribute_among_remaining":
		text = "If a beneficiary predeceases me, their share shall be redistributed among the remaining beneficiaries in proportion to their respective shares."
	case "to_alternate_beneficiary":
		if c.AlternateBeneficiaryName == "" {
			return nil, missing(clause.Substitution, "alternate beneficiary name")
		}
		text = fmt.Sprintf("If a beneficiary predeceases me, their share shall pass to %s.", c.AlternateBeneficiaryName)
	default:
		text = "If a beneficiary predeceases me, their share shall lapse."
	}

	return []Block{paragraph(text)}, nil
}

func buildMinorTrusts(c *willcontext.Context) ([]Block, error) {
	blocks := []Block{
		paragraph(fmt.Sprintf(
			"If any beneficiary under this Will is a minor at the time of distribution, their share shall be held in trust until they attain the age of %d years.",
			c.MinorTrustsVestingAge)),
	}

	if c.MinorTrustsTrusteeMode == "named_trustee" && c.MinorTrustsTrustee != nil {
		blocks = append(blocks, paragraph(fmt.Sprintf(
			"I appoint %s, of %s, to be the trustee of such trust.",
			c.MinorTrustsTrustee.FullName, c.MinorTrustsTrustee.Address.SingleLine())))
	} else {
		blocks = append(blocks, paragraph(
			"My Executors shall be the trustees of any trust created under this Will."))
	}

	blocks = append(blocks, paragraph(
		"The trustees may apply the income and capital of the trust for the maintenance, education, advancement, or benefit of the beneficiary in their absolute discretion."))

	return blocks, nil
}

func buildAdministrativePowers(*willcontext.Context) ([]Block, error) {
	blocks := []Block{
		paragraph("My Executors and Trustees shall have the following powers:"),
	}

	powers := []string{
		"To sell, convert, call in, and dispose of any part of my Estate as they think fit.",
		"To pay or compromise any debt or claim against my Estate.",
		"To employ professional advisers and agents as they consider necessary.",
		"To invest trust funds in any investments authorized by law for trust investments.",
		"To apply income for the maintenance of beneficiaries during the administration of my Estate.",
		"To delegate powers and duties as permitted by law.",
	}
	for _, power := range powers {
		blocks = append(blocks, bullet(power))
	}

	return blocks, nil
}

func buildDigitalAssets(c *willcontext.Context) ([]Block, error) {
	if !c.DigitalAssetsAuthority {
		return []Block{
			paragraph("I make no grant of authority over my digital assets."),
		}, nil
	}

	categoryNames := map[string]string{
		"email":         "email accounts",
		"social_media":  "social media accounts",
		"cloud_storage": "cloud storage accounts",
		"crypto":        "cryptocurrency holdings",
	}

	text := "I authorize my Executors to access, manage, and dispose of my digital assets. This includes access to the following categories: "
	var categories []string
	for _, cat := range c.DigitalAssetsCategories {
		name, ok := categoryNames[cat]
		if !ok {
			name = cat
		}
		categories = append(categories, name)
	}
	if len(categories) > 0 {
		text += JoinNames(categories) + "."
	}
	if c.DigitalAssetsInstructionsLocation != "" {
		text += fmt.Sprintf(" Detailed instructions for accessing these assets are located at: %s.",
			c.DigitalAssetsInstructionsLocation)
	}

	return []Block{paragraph(text)}, nil
}

func buildPets(c *willcontext.Context) ([]Block, error) {
	if c.PetsCarerName == "" {
		return nil, missing(clause.Pets, "pet carer")
	}

	text := fmt.Sprintf("I have %d pet(s): %s. I give my pets to %s, of %s, for care and custody.",
		c.PetsCount, c.PetsSummary, c.PetsCarerName, c.PetsCarerAddr.SingleLine())

	if c.PetsCashGift != nil && *c.PetsCashGift > 0 {
		text += fmt.Sprintf(" I also give to %s the sum of %s for the care and maintenance of my pets.",
			c.PetsCarerName, Currency(*c.PetsCashGift))
	}

	return []Block{paragraph(text)}, nil
}

func buildBusinessInterests(c *willcontext.Context) ([]Block, error) {
	if len(c.BusinessInterests) == 0 {
		return nil, missing(clause.BusinessInterests, "business interests")
	}

	typeNames := map[string]string{
		"sole_trader":          "sole trader business",
		"company_shareholding": "company shareholding",
		"partnership":          "partnership interest",
		"trust_interest":       "trust interest",
	}

	blocks := []Block{paragraph("I direct that my business interests be dealt with as follows:")}
	for i, interest := range c.BusinessInterests {
		if interest.RecipientName == "" {
			return nil, missing(clause.BusinessInterests, "recipient for "+interest.EntityName)
		}
		typeName, ok := typeNames[interest.InterestType]
		if !ok {
			typeName = "business interest"
		}
		blocks = append(blocks, numbered(fmt.Sprintf("%d. My %s in %s shall pass to %s.",
			i+1, typeName, interest.EntityName, interest.RecipientName)))
	}

	return blocks, nil
}

func buildExclusionNote(c *willcontext.Context) ([]Block, error) {
	if len(c.Exclusions) == 0 {
		return nil, missing(clause.ExclusionNote, "exclusions")
	}

	categoryNames := map[string]string{
		"former_partner":  "former partner",
		"child":           "child",
		"stepchild":       "stepchild",
		"dependant_other": "dependant",
	}

	var blocks []Block
	for _, exclusion := range c.Exclusions {
		category, ok := categoryNames[exclusion.Category]
		if !ok {
			category = exclusion.Category
		}

		text := fmt.Sprintf("I have made no provision in this Will for my %s, %s.", category, exclusion.PersonName)

		if len(exclusion.Reasons) > 0 {
			reasonTexts := map[string]string{
				"already_provided_for":   "they have already been provided for during my lifetime",
				"estrangement":           "of estrangement",
				"financial_independence": "they are financially independent",
			}
			var reasons []string
			for _, reason := range exclusion.Reasons {
				switch {
				case reason == "other_structured" && exclusion.OtherNote != "":
					reasons = append(reasons, exclusion.OtherNote)
				case reason == "other_structured":
					reasons = append(reasons, "other reasons")
				default:
					if t, ok := reasonTexts[reason]; ok {
						reasons = append(reasons, t)
					} else {
						reasons = append(reasons, reason)
					}
				}
			}
			text += " This is because " + JoinNames(reasons) + "."
		}

		blocks = append(blocks, paragraph(text))
	}

	return blocks, nil
}

func buildLifeSustaining(c *willcontext.Context) ([]Block, error) {
	templates := map[string]string{
		"comfort_and_dignity_prioritised": "If I have a terminal illness or injury, or am in a persistent vegetative state, I direct that my comfort and dignity be prioritised. I do not wish to receive life-sustaining treatment if the burdens outweigh the benefits.",
		"palliative_only_in_terminal_or_permanent_unconsciousness": "If I have a terminal condition or am permanently unconscious, I direct that only palliative care be provided to maintain my comfort. I do not wish to receive treatment that would merely prolong the dying process.",
		"prolong_life_if_reasonable":                               "I wish for all reasonable measures to be taken to prolong my life, provided that such measures do not cause undue suffering.",
	}
	text, ok := templates[c.LifeSustainingTemplate]
	if !ok {
		text = "I have expressed my wishes regarding life sustaining treatment."
	}

	if len(c.LifeSustainingValues) > 0 {
		valueTexts := map[string]string{
			"comfort":                    "comfort",
			"dignity":                    "dignity",
			"palliative_care":            "palliative care",
			"avoid_burdensome_treatment": "avoidance of burdensome treatment",
		}
		var values []string
		for _, v := range c.LifeSustainingValues {
			name, ok := valueTexts[v]
			if !ok {
				name = v
			}
			values = append(values, name)
		}
		text += fmt.Sprintf(" My values include: %s.", JoinNames(values))
	}

	return []Block{paragraph(text)}, nil
}

func buildAttestation(c *willcontext.Context) ([]Block, error) {
	if c.WillMaker.FullName == "" {
		return nil, missing(clause.Attestation, "will maker name")
	}

	return []Block{
		paragraph("SIGNED by the Testator as their Last Will and Testament:"),
		{Type: BlockSignature, Signature: &Signature{
			Label:     "Signature of Will Maker",
			Name:      c.WillMaker.FullName,
			DateLabel: "Date",
			Lines:     3,
		}},
		paragraph("SIGNED by the above-named Testator in our presence and attested by us in the presence of the Testator and each other."),
		{Type: BlockSignature, Signature: &Signature{
			Label:           "Witness 1",
			NameLabel:       "Name (print)",
			AddressLabel:    "Address",
			OccupationLabel: "Occupation",
			DateLabel:       "Date",
			Lines:           4,
		}},
		{Type: BlockSignature, Signature: &Signature{
			Label:           "Witness 2",
			NameLabel:       "Name (print)",
			AddressLabel:    "Address",
			OccupationLabel: "Occupation",
			DateLabel:       "Date",
			Lines:           4,
		}},
	}, nil
}
