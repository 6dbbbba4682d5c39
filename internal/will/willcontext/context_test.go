package willcontext

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"willgen/internal/will/payload"
)

type ContextSuite struct {
	suite.Suite
}

func TestContextSuite(t *testing.T) {
	suite.Run(t, new(ContextSuite))
}

func basePayload() *payload.Normalized {
	return &payload.Normalized{
		WillMaker: payload.WillMaker{
			FullName:           "Margaret Anne Wilson",
			RelationshipStatus: "single",
		},
		Executors: payload.Executors{
			Mode: "one",
			Primary: []payload.Executor{
				{FullName: "David Wilson", Relationship: "Brother"},
			},
			Backup: payload.BackupExecutors{Mode: "none"},
		},
		Distribution: payload.Distribution{Scheme: "custom_structured"},
		Beneficiaries: []payload.Beneficiary{
			{ID: "ben_1", Type: "individual", FullName: "David Wilson", GiftRole: "residue"},
		},
		Survivorship: payload.Survivorship{Days: 30},
		Substitution: payload.Substitution{Rule: "to_their_children"},
	}
}

func (s *ContextSuite) TestBaseFlags() {
	c := Build(basePayload())

	s.False(c.HasPartner)
	s.False(c.HasChildren)
	s.False(c.HasMinorChildren)
	s.True(c.HasResidueScheme)
	s.False(c.HasSpecificGifts)
	s.True(c.HasSubstitution)
	s.Equal(1, c.ExecutorCount)
	s.Equal(1, c.BeneficiaryCount)
	s.Equal(30, c.SurvivorshipDays)
}

func (s *ContextSuite) TestPartnerOnlyExecutorSynthesized() {
	p := basePayload()
	p.WillMaker.RelationshipStatus = "married"
	p.Partner = &payload.Partner{
		FullName: "Robert Wilson",
		Address:  payload.Address{Street: "14 Jacaranda Street", Suburb: "Toowong", State: "QLD", Postcode: "4066"},
		Phone:    "07 3123 4567",
	}
	p.Executors = payload.Executors{
		Mode:   "partner_only",
		Backup: payload.BackupExecutors{Mode: "partner"},
	}

	c := Build(p)
	s.True(c.HasPartner)
	s.Require().Len(c.Executors, 1)
	s.Equal("Robert Wilson", c.Executors[0].FullName)
	s.Equal("partner", c.Executors[0].Relationship)
	s.Require().Len(c.BackupExecutors, 1)
	s.Equal("Robert Wilson", c.BackupExecutors[0].FullName)
}

func (s *ContextSuite) TestSpecificGiftsExtracted() {
	amount := 5000.0
	p := basePayload()
	p.Beneficiaries = append(p.Beneficiaries,
		payload.Beneficiary{ID: "ben_2", Type: "charity", FullName: "RSPCA Queensland",
			GiftRole: "specific_cash", CashAmount: &amount},
		payload.Beneficiary{ID: "ben_3", Type: "individual", FullName: "Emily Wilson",
			GiftRole: "specific_item", ItemDescription: "Grandmother's pearl necklace"},
	)

	c := Build(p)
	s.True(c.HasSpecificGifts)
	s.Require().Len(c.SpecificGifts, 2)
	s.Equal(GiftCash, c.SpecificGifts[0].GiftType)
	s.Equal(5000.0, c.SpecificGifts[0].CashAmount)
	s.Equal(GiftItem, c.SpecificGifts[1].GiftType)
	s.Equal("Grandmother's pearl necklace", c.SpecificGifts[1].ItemDescription)
	s.Require().Len(c.ResidueBeneficiaries, 1)
	s.Equal("ben_1", c.ResidueBeneficiaries[0].BeneficiaryID)
}

func (s *ContextSuite) TestPercentageSum() {
	p60, p40 := 60.0, 40.0
	p := basePayload()
	p.Beneficiaries = []payload.Beneficiary{
		{ID: "ben_1", GiftRole: "percentage_only", Percentage: &p60},
		{ID: "ben_2", GiftRole: "percentage_only", Percentage: &p40},
	}

	c := Build(p)
	s.True(c.HasPercentages)
	s.InDelta(100.0, c.PercentageSum, 0.001)
	s.False(c.HasResidueScheme)
}

func (s *ContextSuite) TestGuardianshipRequiresMinors() {
	p := basePayload()
	p.Guardianship = &payload.Guardianship{
		AppointGuardian: true,
		Guardian:        &payload.Guardian{FullName: "Sarah Chen"},
	}

	// No minor children: guardianship is ignored.
	c := Build(p)
	s.False(c.HasGuardianship)
	s.Nil(c.Guardian)

	p.HasChildren = true
	p.Children = []payload.Child{
		{FullName: "Emily Wilson", IsExpectedToBeMinorAtDeath: true},
	}
	c = Build(p)
	s.True(c.HasMinorChildren)
	s.True(c.HasGuardianship)
	s.Require().NotNil(c.Guardian)
	s.Equal("Sarah Chen", c.Guardian.FullName)
}

func (s *ContextSuite) TestMinorTrustsGating() {
	p := basePayload()
	p.MinorTrusts = payload.MinorTrusts{Enabled: true, VestingAge: 21, TrusteeMode: "executors_as_trustees"}

	// Residue beneficiary counts as a vesting taker.
	c := Build(p)
	s.True(c.MinorTrustsEnabled)
	s.True(c.HasMinorTrusts)
	s.Equal(21, c.MinorTrustsVestingAge)

	// Only specific gifts: nothing vests, clause stays out.
	amount := 1000.0
	p.Beneficiaries = []payload.Beneficiary{
		{ID: "ben_1", GiftRole: "specific_cash", CashAmount: &amount},
	}
	c = Build(p)
	s.True(c.MinorTrustsEnabled)
	s.False(c.HasMinorTrusts)
}

func (s *ContextSuite) TestAlternateBeneficiaryResolved() {
	p := basePayload()
	p.Substitution = payload.Substitution{
		Rule:                   "to_alternate_beneficiary",
		AlternateBeneficiaryID: "ben_1",
	}

	c := Build(p)
	s.True(c.HasAlternateBeneficiary)
	s.Equal("David Wilson", c.AlternateBeneficiaryName)
}

func (s *ContextSuite) TestPetCarerResolvedFromBeneficiary() {
	p := basePayload()
	p.Beneficiaries[0].Address = payload.Address{Street: "22 River Terrace", Suburb: "Kangaroo Point", State: "QLD", Postcode: "4169"}
	p.Toggles.Pets = payload.Pets{
		Enabled:           true,
		Count:             2,
		Summary:           "Two cats",
		CarePersonMode:    "select_beneficiary",
		CareBeneficiaryID: "ben_1",
	}

	c := Build(p)
	s.True(c.HasPets)
	s.Equal("David Wilson", c.PetsCarerName)
	s.Equal("22 River Terrace", c.PetsCarerAddr.Street)
}

func (s *ContextSuite) TestBusinessRecipientResolved() {
	p := basePayload()
	p.Toggles.Business = payload.Business{
		Enabled: true,
		Interests: []payload.BusinessInterest{
			{
				InterestType:  "sole_trader",
				EntityName:    "Wilson Consulting",
				RecipientMode: "select_beneficiary",
				RecipientID:   "ben_1",
			},
		},
	}

	c := Build(p)
	s.True(c.HasBusinessInterests)
	s.Require().Len(c.BusinessInterests, 1)
	s.Equal("David Wilson", c.BusinessInterests[0].RecipientName)
}

func (s *ContextSuite) TestDeterministicForSamePayload() {
	a := Build(basePayload())
	b := Build(basePayload())
	s.Equal(a, b)
}
