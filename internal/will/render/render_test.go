package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"willgen/internal/will/clause"
	"willgen/internal/will/payload"
	"willgen/internal/will/willcontext"
)

// =============================================================================
// Clause Renderer Test Suite
// =============================================================================
// Justification for unit tests: the renderer substitutes context values into
// fixed legal wording, and a wrong name, amount, or missing fatal error would
// surface as a defective legal document. E2E tests over the PDF bytes cannot
// pinpoint which clause's wording regressed.

type RenderSuite struct {
	suite.Suite
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderSuite))
}

func baseContext() *willcontext.Context {
	return &willcontext.Context{
		WillMaker: payload.WillMaker{
			FullName:   "Margaret Anne Wilson",
			Occupation: "Teacher",
			Address: payload.Address{
				Street:   "12 Jacaranda Street",
				Suburb:   "Toowong",
				State:    "QLD",
				Postcode: "4066",
			},
		},
		Executors: []payload.Executor{{
			FullName: "David Wilson",
			Address: payload.Address{
				Street:   "8 Fig Tree Pocket Road",
				Suburb:   "Indooroopilly",
				State:    "QLD",
				Postcode: "4068",
			},
		}},
		DistributionScheme: "custom_structured",
		SurvivorshipDays:   30,
		SubstitutionRule:   "to_their_children",
		HasSubstitution:    true,
		ExecutorCount:      1,
	}
}

func (s *RenderSuite) render(c *willcontext.Context) []Clause {
	plan, err := clause.Resolve(c)
	s.Require().NoError(err)
	clauses, err := Render(plan, c)
	s.Require().NoError(err)
	return clauses
}

// clauseByID finds a rendered clause, failing the test if it is absent.
func (s *RenderSuite) clauseByID(clauses []Clause, id clause.ID) Clause {
	for _, cl := range clauses {
		if cl.ID == id {
			return cl
		}
	}
	s.Require().Failf("clause not rendered", "wanted %s", id)
	return Clause{}
}

func joinText(cl Clause) string {
	var b strings.Builder
	for _, block := range cl.Blocks {
		b.WriteString(block.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Core Clause Wording Tests
// =============================================================================

func (s *RenderSuite) TestTitleIdentification() {
	clauses := s.render(baseContext())
	title := s.clauseByID(clauses, clause.TitleIdentification)

	s.Equal(1, title.Number)
	s.Require().Len(title.Blocks, 2)
	s.Equal(BlockHeading1, title.Blocks[0].Type)
	s.Equal("LAST WILL AND TESTAMENT", title.Blocks[0].Text)
	s.Contains(title.Blocks[1].Text, "I, Margaret Anne Wilson, of 12 Jacaranda Street, Toowong, QLD, 4066, Teacher")
	s.Contains(title.Blocks[1].Text, "declare this to be my Last Will and Testament")
}

func (s *RenderSuite) TestTitleRequiresWillMakerName() {
	c := baseContext()
	c.WillMaker.FullName = ""

	plan, err := clause.Resolve(c)
	s.Require().NoError(err)
	_, err = Render(plan, c)
	s.Require().Error(err)
	s.ErrorIs(err, ErrMissingData)
}

func (s *RenderSuite) TestDefinitionsIncludeSurvivorshipPeriod() {
	clauses := s.render(baseContext())
	defs := s.clauseByID(clauses, clause.Definitions)

	var found bool
	for _, block := range defs.Blocks {
		if block.Definition != nil && block.Definition.Term == `"Survivorship Period"` {
			found = true
			s.Contains(block.Definition.Definition, "30 days")
		}
	}
	s.True(found, "survivorship period definition missing")
}

func (s *RenderSuite) TestExecutorAppointment() {
	s.Run("single executor uses singular wording", func() {
		clauses := s.render(baseContext())
		appt := s.clauseByID(clauses, clause.AppointmentExecutorsTrustees)
		s.Contains(joinText(appt), "I appoint David Wilson, of 8 Fig Tree Pocket Road, Indooroopilly, QLD, 4068, to be the Executor and Trustee of my Estate.")
	})

	s.Run("joint executors are joined by name", func() {
		c := baseContext()
		c.Executors = append(c.Executors, payload.Executor{FullName: "Susan Chen"})
		clauses := s.render(c)
		appt := s.clauseByID(clauses, clause.AppointmentExecutorsTrustees)
		s.Contains(joinText(appt), "I appoint David Wilson and Susan Chen to be the Executors and Trustees of my Estate.")
	})

	s.Run("backup executor adds substitution paragraph", func() {
		c := baseContext()
		c.BackupExecutors = []payload.Executor{{
			FullName: "Peter Wilson",
			Address:  payload.Address{Street: "3 Sandgate Road", Suburb: "Albion", State: "QLD", Postcode: "4010"},
		}}
		clauses := s.render(c)
		appt := s.clauseByID(clauses, clause.AppointmentExecutorsTrustees)
		s.Contains(joinText(appt), "If my appointed Executor is unable or unwilling to act, I appoint Peter Wilson")
	})
}

func (s *RenderSuite) TestDistributionOverview() {
	tests := []struct {
		scheme string
		want   string
	}{
		{"partner_then_children_equal", "first to my partner"},
		{"children_equal", "equally among my children"},
		{"percentages_named", "in the percentages specified"},
		{"specific_gifts_then_residue", "specific gifts as detailed below"},
		{"custom_structured", "following structured plan"},
	}
	for _, tt := range tests {
		s.Run(tt.scheme, func() {
			c := baseContext()
			c.DistributionScheme = tt.scheme
			clauses := s.render(c)
			overview := s.clauseByID(clauses, clause.DistributionOverview)
			s.Contains(joinText(overview), tt.want)
		})
	}
}

func (s *RenderSuite) TestSpecificGifts() {
	c := baseContext()
	c.HasSpecificGifts = true
	c.SpecificGifts = []willcontext.SpecificGift{
		{BeneficiaryName: "James Wilson", GiftType: willcontext.GiftCash, CashAmount: 15000},
		{BeneficiaryName: "Emily Wilson", GiftType: willcontext.GiftItem, ItemDescription: "grandmother's pearl necklace"},
	}

	clauses := s.render(c)
	gifts := s.clauseByID(clauses, clause.SpecificGifts)

	text := joinText(gifts)
	s.Contains(text, "1. To James Wilson, the sum of $15,000.")
	s.Contains(text, "2. To Emily Wilson, my grandmother's pearl necklace.")
}

func (s *RenderSuite) TestResidueDistribution() {
	full := 100.0
	sixty := 60.0
	forty := 40.0

	s.Run("no residue beneficiaries falls to executor trust", func() {
		clauses := s.render(baseContext())
		residue := s.clauseByID(clauses, clause.ResidueDistribution)
		s.Contains(joinText(residue), "to my executors upon the trusts hereinafter declared")
	})

	s.Run("single beneficiary at full share", func() {
		c := baseContext()
		c.ResidueBeneficiaries = []willcontext.ResidueBeneficiary{
			{BeneficiaryName: "David Wilson", SharePercent: &full},
		}
		clauses := s.render(c)
		residue := s.clauseByID(clauses, clause.ResidueDistribution)
		s.Contains(joinText(residue), "I give the residue of my Estate to David Wilson.")
	})

	s.Run("single beneficiary at partial share names the percentage", func() {
		c := baseContext()
		c.ResidueBeneficiaries = []willcontext.ResidueBeneficiary{
			{BeneficiaryName: "David Wilson", SharePercent: &sixty},
		}
		clauses := s.render(c)
		residue := s.clauseByID(clauses, clause.ResidueDistribution)
		s.Contains(joinText(residue), "I give 60% of the residue of my Estate to David Wilson.")
	})

	s.Run("multiple beneficiaries are enumerated", func() {
		c := baseContext()
		c.ResidueBeneficiaries = []willcontext.ResidueBeneficiary{
			{BeneficiaryName: "David Wilson", SharePercent: &sixty},
			{BeneficiaryName: "Susan Chen", SharePercent: &forty},
		}
		clauses := s.render(c)
		residue := s.clauseByID(clauses, clause.ResidueDistribution)
		text := joinText(residue)
		s.Contains(text, "1. 60% to David Wilson")
		s.Contains(text, "2. 40% to Susan Chen")
	})
}

func (s *RenderSuite) TestSurvivorship() {
	s.Run("zero days disables the period", func() {
		c := baseContext()
		c.SurvivorshipDays = 0
		clauses := s.render(c)
		surv := s.clauseByID(clauses, clause.Survivorship)
		s.Contains(joinText(surv), "No survivorship period applies")
	})

	s.Run("positive days states the period", func() {
		clauses := s.render(baseContext())
		surv := s.clauseByID(clauses, clause.Survivorship)
		s.Contains(joinText(surv), "must survive me by 30 days")
	})
}

func (s *RenderSuite) TestSubstitution() {
	s.Run("to their children", func() {
		clauses := s.render(baseContext())
		sub := s.clauseByID(clauses, clause.Substitution)
		s.Contains(joinText(sub), "shall pass to their children who survive me")
	})

	s.Run("alternate beneficiary is named", func() {
		c := baseContext()
		c.SubstitutionRule = "to_alternate_beneficiary"
		c.HasSubstitution = true
		c.HasAlternateBeneficiary = true
		c.AlternateBeneficiaryName = "Susan Chen"
		clauses := s.render(c)
		sub := s.clauseByID(clauses, clause.Substitution)
		s.Contains(joinText(sub), "shall pass to Susan Chen")
	})

	s.Run("missing alternate name is fatal", func() {
		c := baseContext()
		c.SubstitutionRule = "to_alternate_beneficiary"
		c.HasSubstitution = true
		c.HasAlternateBeneficiary = true
		plan, err := clause.Resolve(c)
		s.Require().NoError(err)
		_, err = Render(plan, c)
		s.ErrorIs(err, ErrMissingData)
	})
}

// =============================================================================
// Conditional Clause Tests
// =============================================================================

func (s *RenderSuite) TestGuardianship() {
	c := baseContext()
	c.HasMinorChildren = true
	c.HasGuardianship = true
	c.Guardian = &payload.Guardian{
		FullName: "Sarah Thompson",
		Address:  payload.Address{Street: "22 Kedron Brook Road", Suburb: "Wilston", State: "QLD", Postcode: "4051"},
	}
	c.BackupGuardian = &payload.Guardian{
		FullName: "Mark Thompson",
		Address:  payload.Address{Street: "22 Kedron Brook Road", Suburb: "Wilston", State: "QLD", Postcode: "4051"},
	}

	clauses := s.render(c)
	guardianship := s.clauseByID(clauses, clause.Guardianship)

	text := joinText(guardianship)
	s.Contains(text, "I appoint Sarah Thompson, of 22 Kedron Brook Road, Wilston, QLD, 4051, to be the guardian")
	s.Contains(text, "If Sarah Thompson is unable or unwilling to act as guardian, I appoint Mark Thompson")
}

func (s *RenderSuite) TestMinorTrusts() {
	c := baseContext()
	c.HasMinorTrusts = true
	c.MinorTrustsEnabled = true
	c.MinorTrustsVestingAge = 21
	c.MinorTrustsTrusteeMode = "executors_as_trustees"

	clauses := s.render(c)
	trusts := s.clauseByID(clauses, clause.MinorTrusts)

	text := joinText(trusts)
	s.Contains(text, "until they attain the age of 21 years")
	s.Contains(text, "My Executors shall be the trustees")
	s.Contains(text, "maintenance, education, advancement, or benefit")
}

func (s *RenderSuite) TestMinorTrustsNamedTrustee() {
	c := baseContext()
	c.HasMinorTrusts = true
	c.MinorTrustsEnabled = true
	c.MinorTrustsVestingAge = 25
	c.MinorTrustsTrusteeMode = "named_trustee"
	c.MinorTrustsTrustee = &payload.Executor{
		FullName: "Helen Park",
		Address:  payload.Address{Street: "5 Gregory Terrace", Suburb: "Spring Hill", State: "QLD", Postcode: "4000"},
	}

	clauses := s.render(c)
	trusts := s.clauseByID(clauses, clause.MinorTrusts)
	s.Contains(joinText(trusts), "I appoint Helen Park, of 5 Gregory Terrace, Spring Hill, QLD, 4000, to be the trustee")
}

func (s *RenderSuite) TestFuneralWishes() {
	c := baseContext()
	c.HasFuneralWishes = true
	c.FuneralPreference = "cremation"
	c.FuneralNotes = "Ashes to be scattered at Moreton Bay."

	clauses := s.render(c)
	funeral := s.clauseByID(clauses, clause.FuneralWishes)

	text := joinText(funeral)
	s.Contains(text, "disposed of by cremation")
	s.Contains(text, "Ashes to be scattered at Moreton Bay.")
}

func (s *RenderSuite) TestDigitalAssets() {
	s.Run("authority granted lists categories and location", func() {
		c := baseContext()
		c.HasDigitalAssets = true
		c.DigitalAssetsAuthority = true
		c.DigitalAssetsCategories = []string{"email", "crypto"}
		c.DigitalAssetsInstructionsLocation = "safe deposit box at Suncorp Toowong"

		clauses := s.render(c)
		digital := s.clauseByID(clauses, clause.DigitalAssets)

		text := joinText(digital)
		s.Contains(text, "I authorize my Executors to access, manage, and dispose of my digital assets")
		s.Contains(text, "email accounts and cryptocurrency holdings")
		s.Contains(text, "safe deposit box at Suncorp Toowong")
	})

	s.Run("no authority yields refusal wording", func() {
		c := baseContext()
		c.HasDigitalAssets = true
		clauses := s.render(c)
		digital := s.clauseByID(clauses, clause.DigitalAssets)
		s.Contains(joinText(digital), "I make no grant of authority over my digital assets.")
	})
}

func (s *RenderSuite) TestPets() {
	cash := 2000.0

	c := baseContext()
	c.HasPets = true
	c.PetsCount = 2
	c.PetsSummary = "two cats, Milo and Otis"
	c.PetsCarerName = "Emily Wilson"
	c.PetsCarerAddr = payload.Address{Street: "14 Waterworks Road", Suburb: "Ashgrove", State: "QLD", Postcode: "4060"}
	c.PetsCashGift = &cash

	clauses := s.render(c)
	pets := s.clauseByID(clauses, clause.Pets)

	text := joinText(pets)
	s.Contains(text, "I have 2 pet(s): two cats, Milo and Otis.")
	s.Contains(text, "I give my pets to Emily Wilson")
	s.Contains(text, "the sum of $2,000 for the care and maintenance of my pets")
}

func (s *RenderSuite) TestPetsMissingCarerIsFatal() {
	c := baseContext()
	c.HasPets = true
	c.PetsCount = 1
	c.PetsSummary = "one dog"

	plan, err := clause.Resolve(c)
	s.Require().NoError(err)
	_, err = Render(plan, c)
	s.ErrorIs(err, ErrMissingData)
}

func (s *RenderSuite) TestBusinessInterests() {
	c := baseContext()
	c.HasBusinessInterests = true
	c.BusinessInterests = []willcontext.BusinessInterest{
		{InterestType: "sole_trader", EntityName: "Wilson Tutoring", RecipientName: "David Wilson"},
		{InterestType: "company_shareholding", EntityName: "Acme Pty Ltd", RecipientName: "Susan Chen"},
	}

	clauses := s.render(c)
	business := s.clauseByID(clauses, clause.BusinessInterests)

	text := joinText(business)
	s.Contains(text, "1. My sole trader business in Wilson Tutoring shall pass to David Wilson.")
	s.Contains(text, "2. My company shareholding in Acme Pty Ltd shall pass to Susan Chen.")
}

func (s *RenderSuite) TestBusinessInterestsMissingRecipientIsFatal() {
	c := baseContext()
	c.HasBusinessInterests = true
	c.BusinessInterests = []willcontext.BusinessInterest{
		{InterestType: "partnership", EntityName: "Wilson & Co"},
	}

	plan, err := clause.Resolve(c)
	s.Require().NoError(err)
	_, err = Render(plan, c)
	s.ErrorIs(err, ErrMissingData)
}

func (s *RenderSuite) TestExclusionNote() {
	c := baseContext()
	c.HasExclusions = true
	c.Exclusions = []payload.ExclusionEntry{
		{
			PersonName: "Gregory Wilson",
			Category:   "child",
			Reasons:    []string{"already_provided_for", "estrangement"},
		},
		{
			PersonName: "Dana Smith",
			Category:   "former_partner",
			Reasons:    []string{"other_structured"},
			OtherNote:  "a binding financial agreement dated 3 May 2019",
		},
	}

	clauses := s.render(c)
	exclusions := s.clauseByID(clauses, clause.ExclusionNote)

	text := joinText(exclusions)
	s.Contains(text, "I have made no provision in this Will for my child, Gregory Wilson.")
	s.Contains(text, "they have already been provided for during my lifetime and of estrangement")
	s.Contains(text, "I have made no provision in this Will for my former partner, Dana Smith.")
	s.Contains(text, "a binding financial agreement dated 3 May 2019")
}

func (s *RenderSuite) TestLifeSustaining() {
	c := baseContext()
	c.HasLifeSustainingStatement = true
	c.LifeSustainingTemplate = "comfort_and_dignity_prioritised"
	c.LifeSustainingValues = []string{"comfort", "palliative_care"}

	clauses := s.render(c)
	statement := s.clauseByID(clauses, clause.LifeSustainingStatement)

	text := joinText(statement)
	s.Contains(text, "comfort and dignity be prioritised")
	s.Contains(text, "My values include: comfort and palliative care.")
}

func (s *RenderSuite) TestAttestation() {
	clauses := s.render(baseContext())
	attestation := s.clauseByID(clauses, clause.Attestation)

	s.Require().Len(attestation.Blocks, 5)
	s.Equal("SIGNED by the Testator as their Last Will and Testament:", attestation.Blocks[0].Text)

	willMaker := attestation.Blocks[1].Signature
	s.Require().NotNil(willMaker)
	s.Equal("Signature of Will Maker", willMaker.Label)
	s.Equal("Margaret Anne Wilson", willMaker.Name)
	s.Equal(3, willMaker.Lines)

	witness1 := attestation.Blocks[3].Signature
	s.Require().NotNil(witness1)
	s.Equal("Witness 1", witness1.Label)
	s.Equal("Name (print)", witness1.NameLabel)
	s.Equal(4, witness1.Lines)

	witness2 := attestation.Blocks[4].Signature
	s.Require().NotNil(witness2)
	s.Equal("Witness 2", witness2.Label)
}

// =============================================================================
// Structural Tests
// =============================================================================

func (s *RenderSuite) TestClauseNumberingFollowsPlan() {
	clauses := s.render(baseContext())
	for i, cl := range clauses {
		s.Equal(i+1, cl.Number)
		s.NotEmpty(cl.Title)
	}
	s.Equal(clause.TitleIdentification, clauses[0].ID)
	s.Equal(clause.Attestation, clauses[len(clauses)-1].ID)
}

func (s *RenderSuite) TestDeterministicOutput() {
	c := baseContext()
	c.HasSpecificGifts = true
	c.SpecificGifts = []willcontext.SpecificGift{
		{BeneficiaryName: "James Wilson", GiftType: willcontext.GiftCash, CashAmount: 15000},
	}

	first := s.render(c)
	second := s.render(c)

	a, err := json.Marshal(first)
	s.Require().NoError(err)
	b, err := json.Marshal(second)
	s.Require().NoError(err)
	s.Equal(string(a), string(b))
}

// =============================================================================
// Formatting Helper Tests
// =============================================================================

type FormatSuite struct {
	suite.Suite
}

func TestFormatSuite(t *testing.T) {
	suite.Run(t, new(FormatSuite))
}

func (s *FormatSuite) TestCurrency() {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0"},
		{50, "$50"},
		{1234, "$1,234"},
		{1234567, "$1,234,567"},
		{1234.5, "$1,234.50"},
		{99.99, "$99.99"},
	}
	for _, tt := range tests {
		s.Equal(tt.want, Currency(tt.amount))
	}
}

func (s *FormatSuite) TestPercentage() {
	s.Equal("50%", Percentage(50))
	s.Equal("100%", Percentage(100))
	s.Equal("33.33%", Percentage(33.33))
	s.Equal("12.50%", Percentage(12.5))
}

func (s *FormatSuite) TestDate() {
	s.Equal("15 March 1960", Date("1960-03-15"))
	s.Equal("02 January 2026", Date("2026-01-02"))
	s.Equal("not-a-date", Date("not-a-date"))
}

func (s *FormatSuite) TestJoinNames() {
	s.Equal("", JoinNames(nil))
	s.Equal("Alice", JoinNames([]string{"Alice"}))
	s.Equal("Alice and Bob", JoinNames([]string{"Alice", "Bob"}))
	s.Equal("Alice, Bob, and Carol", JoinNames([]string{"Alice", "Bob", "Carol"}))
}

func (s *FormatSuite) TestNumberToWords() {
	s.Equal("zero", NumberToWords(0))
	s.Equal("seven", NumberToWords(7))
	s.Equal("eighteen", NumberToWords(18))
	s.Equal("twenty-one", NumberToWords(21))
	s.Equal("one hundred and five", NumberToWords(105))
	s.Equal("two thousand five hundred", NumberToWords(2500))
	s.Equal("1000000", NumberToWords(1000000))
}

func (s *FormatSuite) TestOrdinal() {
	s.Equal("1st", Ordinal(1))
	s.Equal("2nd", Ordinal(2))
	s.Equal("3rd", Ordinal(3))
	s.Equal("4th", Ordinal(4))
	s.Equal("11th", Ordinal(11))
	s.Equal("12th", Ordinal(12))
	s.Equal("13th", Ordinal(13))
	s.Equal("21st", Ordinal(21))
	s.Equal("101st", Ordinal(101))
}
