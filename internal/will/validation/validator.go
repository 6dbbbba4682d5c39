// Package validation performs full-payload validation of intake
// submissions. Validation never fails fast: every rule runs against the
// whole payload so a single response can report everything the intake form
// needs to fix. A payload that validates cleanly is returned as a
// payload.Normalized, the only form downstream stages ever see.
package validation

import (
	"fmt"
	"time"

	"willgen/internal/will/payload"
)

// Validator checks raw intake payloads against the full rule set.
type Validator struct {
	now func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithNow overrides the clock used for age checks. Tests use this to pin
// validation to a fixed instant.
func WithNow(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New builds a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs every rule against the payload, accumulating errors and
// warnings. On success it returns the normalized payload; on failure the
// normalized payload is nil and the Result carries every error found.
func (v *Validator) Validate(raw payload.Raw) (*payload.Normalized, *Result) {
	res := &Result{}
	out := &payload.Normalized{}

	if raw == nil {
		res.AddError("", "Payload must be a JSON object", CodeType, "general")
		return nil, res
	}

	r := &run{raw: raw, res: res, out: out, now: v.now().UTC()}

	r.eligibility()
	r.willMaker()
	children := r.children()
	r.executors()
	r.guardianship(children)
	beneficiaries := r.distribution(children)
	r.toggles(beneficiaries)
	r.assets()
	r.declarations()
	r.crossChecks(children)

	if !res.OK() {
		return nil, res
	}
	return out, res
}

// run carries the per-call state through the section walk.
type run struct {
	raw payload.Raw
	res *Result
	out *payload.Normalized
	now time.Time
}

// confirmation validates a boolean field that must be affirmatively true.
func (r *run) confirmation(v any, field, mustMessage, section string) bool {
	b, ok := boolField(v, field, true, r.res, section)
	if !ok {
		return false
	}
	if !b {
		r.res.AddError(field, mustMessage, CodeInvalid, section)
		return false
	}
	return true
}

func (r *run) eligibility() {
	const section = "eligibility"
	m, ok := asMap(r.raw["eligibility"])
	if !ok {
		r.res.AddError("eligibility", "Eligibility section is required", CodeRequired, section)
		return
	}

	r.out.Eligibility.ConfirmAgeOver18 = r.confirmation(m["confirm_age_over_18"],
		"eligibility.confirm_age_over_18", "You must confirm you are 18 or older", section)
	r.out.Eligibility.ConfirmQLD = r.confirmation(m["confirm_qld"],
		"eligibility.confirm_qld", "You must confirm Queensland residency", section)
	r.out.Eligibility.ConfirmNotLegalAdvice = r.confirmation(m["confirm_not_legal_advice"],
		"eligibility.confirm_not_legal_advice", "You must acknowledge this is not legal advice", section)
}

func (r *run) willMaker() {
	const section = "will_maker"
	m, ok := asMap(r.raw["will_maker"])
	if !ok {
		r.res.AddError("will_maker", "Will maker details are required", CodeRequired, section)
		return
	}

	wm := &r.out.WillMaker
	wm.FullName, _ = stringField(m["full_name"], "will_maker.full_name", true, MaxNameLength, r.res, section)
	wm.DOB, _ = dateField(m["dob"], "will_maker.dob", true, 18, r.now, r.res, section)
	wm.Occupation, _ = stringField(m["occupation"], "will_maker.occupation", true, MaxNameLength, r.res, section)
	wm.Address, _ = addressField(m["address"], "will_maker.address", true, r.res, section)
	wm.Email, _ = emailField(m["email"], "will_maker.email", true, r.res, section)
	wm.Phone, _ = phoneField(m["phone"], "will_maker.phone", true, r.res, section)
	wm.RelationshipStatus, _ = enumField(m["relationship_status"], "will_maker.relationship_status",
		RelationshipStatuses, true, r.res, section)

	if isPartnered(wm.RelationshipStatus) {
		pm, ok := asMap(r.raw["partner"])
		if !ok {
			r.res.AddError("partner", "Partner details are required", CodeRequired, section)
		} else {
			p := &payload.Partner{}
			p.FullName, _ = stringField(pm["full_name"], "partner.full_name", true, MaxNameLength, r.res, section)
			p.DOB, _ = dateField(pm["dob"], "partner.dob", false, 0, r.now, r.res, section)
			p.Address, _ = addressField(pm["address"], "partner.address", true, r.res, section)
			p.Email, _ = emailField(pm["email"], "partner.email", false, r.res, section)
			p.Phone, _ = phoneField(pm["phone"], "partner.phone", false, r.res, section)
			r.out.Partner = p
		}
	}

	if wm.RelationshipStatus == "separated" {
		sm, ok := asMap(r.raw["separation"])
		if !ok {
			r.res.AddError("separation", "Separation details are required", CodeRequired, section)
		} else {
			s := &payload.Separation{}
			s.IsLegallySeparated, _ = boolField(sm["is_legally_separated"],
				"separation.is_legally_separated", true, r.res, section)
			s.HasPropertyAgreement, _ = boolField(sm["has_property_agreement"],
				"separation.has_property_agreement", false, r.res, section)
			r.out.Separation = s
		}
	}
}

func (r *run) children() []payload.Child {
	const section = "children"

	hasChildren, _ := boolField(r.raw["has_children"], "has_children", true, r.res, section)
	r.out.HasChildren = hasChildren

	var out []payload.Child
	if hasChildren {
		list, ok := asList(r.raw["children"])
		switch {
		case !ok || len(list) == 0:
			r.res.AddError("children", "At least one child is required when has_children is true", CodeRequired, section)
		case len(list) > MaxChildren:
			r.res.AddError("children", fmt.Sprintf("Maximum %d children allowed", MaxChildren), CodeMaxItems, section)
		default:
			for i, item := range list {
				prefix := fmt.Sprintf("children[%d]", i)
				m, ok := asMap(item)
				if !ok {
					r.res.AddError(prefix, "Child details are required", CodeRequired, section)
					continue
				}
				var c payload.Child
				c.FullName, _ = stringField(m["full_name"], prefix+".full_name", true, MaxNameLength, r.res, section)
				c.DOB, _ = dateField(m["dob"], prefix+".dob", true, 0, r.now, r.res, section)
				c.RelationshipType, _ = enumField(m["relationship_type"], prefix+".relationship_type",
					ChildRelationships, true, r.res, section)
				c.IsExpectedToBeMinorAtDeath, _ = boolField(m["is_expected_to_be_minor_at_death"],
					prefix+".is_expected_to_be_minor_at_death", false, r.res, section)
				c.SpecialNeeds, _ = boolField(m["special_needs"], prefix+".special_needs", false, r.res, section)
				out = append(out, c)
			}
		}
	}
	r.out.Children = out

	if dm, ok := asMap(r.raw["dependants"]); ok {
		hasDeps, _ := boolField(dm["has_other_dependants"], "dependants.has_other_dependants", true, r.res, section)
		r.out.Dependants.HasOtherDependants = hasDeps

		if hasDeps {
			list, ok := asList(dm["other_dependants"])
			switch {
			case !ok || len(list) == 0:
				r.res.AddError("dependants.other_dependants", "At least one dependant is required", CodeRequired, section)
			case len(list) > MaxDependants:
				r.res.AddError("dependants.other_dependants",
					fmt.Sprintf("Maximum %d dependants allowed", MaxDependants), CodeMaxItems, section)
			default:
				for i, item := range list {
					prefix := fmt.Sprintf("dependants.other_dependants[%d]", i)
					m, ok := asMap(item)
					if !ok {
						r.res.AddError(prefix, "Dependant details are required", CodeRequired, section)
						continue
					}
					var d payload.Dependant
					d.FullName, _ = stringField(m["full_name"], prefix+".full_name", true, MaxNameLength, r.res, section)
					d.RelationshipCategory, _ = stringField(m["relationship_category"],
						prefix+".relationship_category", true, 60, r.res, section)
					r.out.Dependants.OtherDependants = append(r.out.Dependants.OtherDependants, d)
				}
			}
		}
	}

	return out
}

// executorEntry validates one executor record. Contact details are only
// checked for primary appointments.
func (r *run) executorEntry(v any, prefix string, withContact bool, section string) (payload.Executor, bool) {
	m, ok := asMap(v)
	if !ok {
		r.res.AddError(prefix, "Executor details are required", CodeRequired, section)
		return payload.Executor{}, false
	}
	var e payload.Executor
	e.FullName, _ = stringField(m["full_name"], prefix+".full_name", true, MaxNameLength, r.res, section)
	e.Relationship, _ = stringField(m["relationship"], prefix+".relationship", true, 60, r.res, section)
	e.Address, _ = addressField(m["address"], prefix+".address", true, r.res, section)
	if withContact {
		e.Phone, _ = phoneField(m["phone"], prefix+".phone", false, r.res, section)
		e.Email, _ = emailField(m["email"], prefix+".email", false, r.res, section)
	}
	return e, true
}

func (r *run) executors() {
	const section = "executors"
	m, ok := asMap(r.raw["executors"])
	if !ok {
		r.res.AddError("executors", "Executor details are required", CodeRequired, section)
		return
	}

	mode, _ := enumField(m["mode"], "executors.mode", ExecutorModes, true, r.res, section)
	r.out.Executors.Mode = mode

	partnered := isPartnered(r.out.WillMaker.RelationshipStatus)

	if mode == "partner_only" && !partnered {
		r.res.AddError("executors.mode", "Partner-only executor requires a partner", CodeDependency, section)
	}

	if mode == "one" || mode == "two_joint" || mode == "two_joint_and_several" {
		list, ok := asList(m["primary"])
		if !ok {
			r.res.AddError("executors.primary", "Primary executors list is required", CodeRequired, section)
		} else {
			want := 2
			if mode == "one" {
				want = 1
			}
			if len(list) != want {
				r.res.AddError("executors.primary",
					fmt.Sprintf("Exactly %d executor(s) required for mode %q", want, mode), CodeCount, section)
			} else {
				for i, item := range list {
					prefix := fmt.Sprintf("executors.primary[%d]", i)
					if e, ok := r.executorEntry(item, prefix, true, section); ok {
						r.out.Executors.Primary = append(r.out.Executors.Primary, e)
					}
				}
			}
		}
	}

	bm, ok := asMap(m["backup"])
	if !ok {
		r.res.AddError("executors.backup", "Backup executor details required", CodeRequired, section)
		return
	}

	backupMode, _ := enumField(bm["mode"], "executors.backup.mode", BackupExecutorModes, true, r.res, section)
	r.out.Executors.Backup.Mode = backupMode

	if backupMode == "partner" && !partnered {
		r.res.AddError("executors.backup.mode", "Partner backup requires a partner", CodeDependency, section)
	}

	if backupMode == "one" || backupMode == "two_joint" || backupMode == "two_joint_and_several" {
		list, ok := asList(bm["list"])
		if !ok {
			r.res.AddError("executors.backup.list", "Backup executors list is required", CodeRequired, section)
			return
		}
		want := 2
		if backupMode == "one" {
			want = 1
		}
		if len(list) != want {
			r.res.AddError("executors.backup.list",
				fmt.Sprintf("Exactly %d backup executor(s) required", want), CodeCount, section)
			return
		}
		for i, item := range list {
			prefix := fmt.Sprintf("executors.backup.list[%d]", i)
			if e, ok := r.executorEntry(item, prefix, false, section); ok {
				r.out.Executors.Backup.List = append(r.out.Executors.Backup.List, e)
			}
		}
	}
}

func hasMinor(children []payload.Child) bool {
	for _, c := range children {
		if c.IsExpectedToBeMinorAtDeath {
			return true
		}
	}
	return false
}

func (r *run) guardianEntry(v any, prefix, missingMsg, section string) (*payload.Guardian, bool) {
	m, ok := asMap(v)
	if !ok {
		r.res.AddError(prefix, missingMsg, CodeRequired, section)
		return nil, false
	}
	var g payload.Guardian
	g.FullName, _ = stringField(m["full_name"], prefix+".full_name", true, MaxNameLength, r.res, section)
	g.Relationship, _ = stringField(m["relationship"], prefix+".relationship", true, 60, r.res, section)
	g.Address, _ = addressField(m["address"], prefix+".address", true, r.res, section)
	g.Phone, _ = phoneField(m["phone"], prefix+".phone", false, r.res, section)
	return &g, true
}

func (r *run) guardianship(children []payload.Child) {
	const section = "guardianship"
	if !hasMinor(children) {
		return
	}

	m, ok := asMap(r.raw["guardianship"])
	if !ok {
		r.res.AddError("guardianship", "Guardianship details are required when minor children exist", CodeRequired, section)
		return
	}

	g := &payload.Guardianship{}
	g.AppointGuardian, _ = boolField(m["appoint_guardian"], "guardianship.appoint_guardian", true, r.res, section)
	r.out.Guardianship = g

	if !g.AppointGuardian {
		return
	}

	g.Guardian, _ = r.guardianEntry(m["guardian"], "guardianship.guardian",
		"Guardian details are required", section)

	// Backup guardian is optional but fully validated when named.
	if bm, ok := asMap(m["backup_guardian"]); ok && !isEmpty(bm["full_name"]) {
		g.BackupGuardian, _ = r.guardianEntry(m["backup_guardian"], "guardianship.backup_guardian",
			"Backup guardian details are required", section)
	}
}

func (r *run) distribution(children []payload.Child) []payload.Beneficiary {
	const section = "distribution"
	m, ok := asMap(r.raw["distribution"])
	if !ok {
		r.res.AddError("distribution", "Distribution details are required", CodeRequired, section)
		return nil
	}

	scheme, _ := enumField(m["scheme"], "distribution.scheme", DistributionSchemes, true, r.res, section)
	r.out.Distribution.Scheme = scheme

	partnered := isPartnered(r.out.WillMaker.RelationshipStatus)

	if scheme == "partner_then_children_equal" && !partnered {
		r.res.AddError("distribution.scheme", "This scheme requires a partner", CodeDependency, section)
	}
	if (scheme == "partner_then_children_equal" || scheme == "children_equal") && !r.out.HasChildren {
		r.res.AddError("distribution.scheme", "This scheme requires at least one child", CodeDependency, section)
	}

	beneficiaries := r.beneficiaries(scheme, section)

	if sm, ok := asMap(r.raw["survivorship"]); ok {
		r.out.Survivorship.Days, _ = intEnumField(sm["days"], "survivorship.days", SurvivorshipDays, true, r.res, section)
	}

	if sm, ok := asMap(r.raw["substitution"]); ok {
		rule, _ := enumField(sm["rule"], "substitution.rule", SubstitutionRules, true, r.res, section)
		r.out.Substitution.Rule = rule

		if rule == "to_alternate_beneficiary" {
			altID, _ := sm["alternate_beneficiary_id"].(string)
			if altID == "" {
				r.res.AddError("substitution.alternate_beneficiary_id",
					"Alternate beneficiary is required", CodeRequired, section)
			} else if !beneficiaryIDExists(beneficiaries, altID) {
				r.res.AddError("substitution.alternate_beneficiary_id",
					"Alternate beneficiary must reference an existing beneficiary", CodeInvalidReference, section)
			} else {
				r.out.Substitution.AlternateBeneficiaryID = altID
			}
		}
	}

	if mm, ok := asMap(r.raw["minor_trusts"]); ok {
		enabled, _ := boolField(mm["enabled"], "minor_trusts.enabled", false, r.res, section)
		r.out.MinorTrusts.Enabled = enabled

		if enabled {
			r.out.MinorTrusts.VestingAge, _ = intEnumField(mm["vesting_age"], "minor_trusts.vesting_age",
				MinorTrustVestingAges, true, r.res, section)
			trusteeMode, _ := enumField(mm["trustee_mode"], "minor_trusts.trustee_mode",
				MinorTrustTrusteeModes, true, r.res, section)
			r.out.MinorTrusts.TrusteeMode = trusteeMode

			if trusteeMode == "named_trustee" {
				tm, ok := asMap(mm["trustee"])
				if !ok {
					r.res.AddError("minor_trusts.trustee", "Trustee details are required", CodeRequired, section)
				} else {
					var t payload.Executor
					t.FullName, _ = stringField(tm["full_name"], "minor_trusts.trustee.full_name", true, MaxNameLength, r.res, section)
					t.Address, _ = addressField(tm["address"], "minor_trusts.trustee.address", true, r.res, section)
					r.out.MinorTrusts.Trustee = &t
				}
			}
		}
	}

	return beneficiaries
}

// beneficiaryID returns the entry's explicit ID, falling back to a stable
// positional one. The same fallback is used everywhere IDs are matched so
// references stay consistent.
func beneficiaryID(m map[string]any, i int) string {
	if id, _ := m["id"].(string); id != "" {
		return id
	}
	return fmt.Sprintf("beneficiary_%d", i)
}

func beneficiaryIDExists(beneficiaries []payload.Beneficiary, id string) bool {
	for i := range beneficiaries {
		if beneficiaries[i].ID == id {
			return true
		}
	}
	return false
}

func (r *run) beneficiaries(scheme, section string) []payload.Beneficiary {
	list, ok := asList(r.raw["beneficiaries"])
	if !ok {
		r.res.AddError("beneficiaries", "Beneficiaries list is required", CodeRequired, section)
		return nil
	}
	if len(list) == 0 {
		r.res.AddError("beneficiaries", "At least one beneficiary is required", CodeRequired, section)
		return nil
	}
	if len(list) > MaxBeneficiaries {
		r.res.AddError("beneficiaries", fmt.Sprintf("Maximum %d beneficiaries allowed", MaxBeneficiaries), CodeMaxItems, section)
		return nil
	}

	var (
		out              []payload.Beneficiary
		percentageSum    float64
		hasSpecificGifts bool
		hasResidue       bool
		seen             = map[string]bool{}
	)

	for i, item := range list {
		prefix := fmt.Sprintf("beneficiaries[%d]", i)
		m, ok := asMap(item)
		if !ok {
			r.res.AddError(prefix, "Beneficiary details are required", CodeRequired, section)
			continue
		}

		var b payload.Beneficiary
		b.ID = beneficiaryID(m, i)
		if seen[b.ID] {
			r.res.AddError(prefix, "Duplicate beneficiary ID: "+b.ID, CodeDuplicate, section)
		}
		seen[b.ID] = true

		b.Type, _ = enumField(m["type"], prefix+".type", BeneficiaryTypes, true, r.res, section)
		b.FullName, _ = stringField(m["full_name"], prefix+".full_name", true, MaxNameLength, r.res, section)

		if b.Type == "individual" {
			b.Relationship, _ = stringField(m["relationship"], prefix+".relationship", true, 60, r.res, section)
			b.Address, _ = addressField(m["address"], prefix+".address", true, r.res, section)
		}

		if b.Type == "charity" {
			if abn, _ := m["abn"].(string); abn != "" {
				if !abnPattern.MatchString(abn) {
					r.res.AddError(prefix+".abn", "Please enter a valid 11-digit ABN", CodeFormat, section)
				} else {
					b.ABN = abn
				}
			}
		}

		b.GiftRole, _ = enumField(m["gift_role"], prefix+".gift_role", GiftRoles, true, r.res, section)

		switch b.GiftRole {
		case "specific_cash":
			hasSpecificGifts = true
			if amount, ok := positiveNumberField(m["cash_amount"], prefix+".cash_amount", true, MaxCashGift, r.res, section); ok {
				b.CashAmount = &amount
			}
		case "specific_item":
			hasSpecificGifts = true
			b.ItemDescription, _ = stringField(m["item_description"], prefix+".item_description", true, 120, r.res, section)
		case "percentage_only":
			if pct, ok := percentageField(m["percentage"], prefix+".percentage", true, r.res, section); ok {
				b.Percentage = &pct
				percentageSum += pct
			}
		case "residue":
			hasResidue = true
			if !isEmpty(m["residue_share_percent"]) {
				if pct, ok := percentageField(m["residue_share_percent"], prefix+".residue_share_percent", true, r.res, section); ok {
					b.ResidueSharePercent = &pct
				}
			}
		}

		out = append(out, b)
	}

	if scheme == "percentages_named" && (percentageSum < 99.99 || percentageSum > 100.01) {
		r.res.AddError("beneficiaries",
			fmt.Sprintf("Percentages must sum to exactly 100%% (current: %.2f%%)", percentageSum),
			CodePercentageSum, section)
	}

	if scheme == "specific_gifts_then_residue" {
		if !hasSpecificGifts {
			r.res.AddError("beneficiaries", "This scheme requires at least one specific gift", CodeDependency, section)
		}
		if !hasResidue {
			r.res.AddError("beneficiaries", "This scheme requires at least one residue beneficiary", CodeDependency, section)
		}
	}

	r.out.Beneficiaries = out
	return out
}

func (r *run) toggles(beneficiaries []payload.Beneficiary) {
	const section = "toggles"
	tm, ok := asMap(r.raw["toggles"])
	if !ok {
		tm = map[string]any{}
	}

	enabled := func(v any) (map[string]any, bool) {
		m, ok := asMap(v)
		if !ok {
			return nil, false
		}
		on, _ := coerceBool(m["enabled"])
		return m, on
	}

	if m, on := enabled(tm["funeral"]); on {
		f := &r.out.Toggles.Funeral
		f.Enabled = true
		f.Preference, _ = enumField(m["preference"], "toggles.funeral.preference", FuneralPreferences, true, r.res, section)
		f.Notes, _ = stringField(m["notes"], "toggles.funeral.notes", false, 200, r.res, section)
	}

	if m, on := enabled(tm["digital_assets"]); on {
		d := &r.out.Toggles.DigitalAssets
		d.Enabled = true
		d.Authority, _ = boolField(m["authority"], "toggles.digital_assets.authority", true, r.res, section)

		cats, ok := asList(m["categories"])
		if !ok || len(cats) == 0 {
			r.res.AddError("toggles.digital_assets.categories", "At least one category must be selected", CodeRequired, section)
		} else {
			for i, c := range cats {
				if cat, ok := enumField(c, fmt.Sprintf("toggles.digital_assets.categories[%d]", i),
					DigitalAssetCategories, true, r.res, section); ok {
					d.Categories = append(d.Categories, cat)
				}
			}
		}
		d.InstructionsLocation, _ = stringField(m["instructions_location"],
			"toggles.digital_assets.instructions_location", true, 120, r.res, section)
	}

	if m, on := enabled(tm["pets"]); on {
		p := &r.out.Toggles.Pets
		p.Enabled = true
		if count, ok := positiveNumberField(m["count"], "toggles.pets.count", true, MaxPets, r.res, section); ok {
			p.Count = int(count)
		}
		p.Summary, _ = stringField(m["summary"], "toggles.pets.summary", true, 120, r.res, section)

		careMode, _ := enumField(m["care_person_mode"], "toggles.pets.care_person_mode", PetCareModes, true, r.res, section)
		p.CarePersonMode = careMode

		switch careMode {
		case "select_beneficiary":
			id, _ := m["care_beneficiary_id"].(string)
			if id == "" {
				r.res.AddError("toggles.pets.care_beneficiary_id", "Beneficiary selection is required", CodeRequired, section)
			} else if !beneficiaryIDExists(beneficiaries, id) {
				r.res.AddError("toggles.pets.care_beneficiary_id", "Selected beneficiary does not exist", CodeInvalidReference, section)
			} else {
				p.CareBeneficiaryID = id
			}
		case "new_person":
			cm, ok := asMap(m["carer"])
			if !ok {
				r.res.AddError("toggles.pets.carer", "Carer details are required", CodeRequired, section)
			} else {
				var carer payload.Person
				carer.FullName, _ = stringField(cm["full_name"], "toggles.pets.carer.full_name", true, MaxNameLength, r.res, section)
				carer.Address, _ = addressField(cm["address"], "toggles.pets.carer.address", true, r.res, section)
				p.Carer = &carer
			}
		}

		if !isEmpty(m["cash_gift"]) {
			if gift, ok := positiveNumberField(m["cash_gift"], "toggles.pets.cash_gift", false, MaxCashGift, r.res, section); ok {
				p.CashGift = &gift
			}
		}
	}

	if m, on := enabled(tm["business"]); on {
		b := &r.out.Toggles.Business
		b.Enabled = true
		list, ok := asList(m["interests"])
		if !ok || len(list) == 0 {
			r.res.AddError("toggles.business.interests", "At least one business interest is required", CodeRequired, section)
		} else {
			for i, item := range list {
				prefix := fmt.Sprintf("toggles.business.interests[%d]", i)
				im, ok := asMap(item)
				if !ok {
					r.res.AddError(prefix, "Business interest details are required", CodeRequired, section)
					continue
				}
				var bi payload.BusinessInterest
				bi.InterestType, _ = enumField(im["interest_type"], prefix+".interest_type",
					BusinessInterestTypes, true, r.res, section)
				bi.EntityName, _ = stringField(im["entity_name"], prefix+".entity_name", true, MaxNameLength, r.res, section)

				if acn, _ := im["acn"].(string); acn != "" {
					if !acnPattern.MatchString(acn) {
						r.res.AddError(prefix+".acn", "Please enter a valid 9-digit ACN", CodeFormat, section)
					} else {
						bi.ACN = acn
					}
				}
				if abn, _ := im["abn"].(string); abn != "" {
					if !abnPattern.MatchString(abn) {
						r.res.AddError(prefix+".abn", "Please enter a valid 11-digit ABN", CodeFormat, section)
					} else {
						bi.ABN = abn
					}
				}

				mode, _ := enumField(im["recipient_mode"], prefix+".recipient_mode", RecipientModes, true, r.res, section)
				bi.RecipientMode = mode

				switch mode {
				case "select_beneficiary":
					id, _ := im["recipient_id"].(string)
					if id == "" {
						r.res.AddError(prefix+".recipient_id", "Beneficiary selection is required", CodeRequired, section)
					} else if !beneficiaryIDExists(beneficiaries, id) {
						r.res.AddError(prefix+".recipient_id", "Selected beneficiary does not exist", CodeInvalidReference, section)
					} else {
						bi.RecipientID = id
					}
				case "new_person":
					rm, ok := asMap(im["recipient"])
					if !ok {
						r.res.AddError(prefix+".recipient", "Recipient details are required", CodeRequired, section)
					} else {
						var rec payload.Person
						rec.FullName, _ = stringField(rm["full_name"], prefix+".recipient.full_name", true, MaxNameLength, r.res, section)
						rec.Address, _ = addressField(rm["address"], prefix+".recipient.address", true, r.res, section)
						bi.Recipient = &rec
					}
				}

				b.Interests = append(b.Interests, bi)
			}
		}
	}

	if m, on := enabled(tm["exclusion"]); on {
		e := &r.out.Toggles.Exclusion
		e.Enabled = true
		list, ok := asList(m["exclusions"])
		if !ok || len(list) == 0 {
			r.res.AddError("toggles.exclusion.exclusions", "At least one exclusion is required", CodeRequired, section)
		} else {
			for i, item := range list {
				prefix := fmt.Sprintf("toggles.exclusion.exclusions[%d]", i)
				em, ok := asMap(item)
				if !ok {
					r.res.AddError(prefix, "Exclusion details are required", CodeRequired, section)
					continue
				}
				var entry payload.ExclusionEntry
				entry.PersonName, _ = stringField(em["person_name"], prefix+".person_name", true, MaxNameLength, r.res, section)
				entry.Category, _ = enumField(em["category"], prefix+".category", ExclusionCategories, true, r.res, section)

				reasons, ok := asList(em["reasons"])
				if !ok || len(reasons) == 0 {
					r.res.AddError(prefix+".reasons", "At least one reason must be selected", CodeRequired, section)
				} else {
					needsNote := false
					for j, reason := range reasons {
						if s, ok := enumField(reason, fmt.Sprintf("%s.reasons[%d]", prefix, j),
							ExclusionReasons, true, r.res, section); ok {
							entry.Reasons = append(entry.Reasons, s)
							if s == "other_structured" {
								needsNote = true
							}
						}
					}
					if needsNote {
						entry.OtherNote, _ = stringField(em["other_note"], prefix+".other_note", true, 300, r.res, section)
					}
				}

				e.Exclusions = append(e.Exclusions, entry)
			}
		}
	}

	if m, on := enabled(tm["life_sustaining"]); on {
		l := &r.out.Toggles.LifeSustaining
		l.Enabled = true
		l.Template, _ = enumField(m["template"], "toggles.life_sustaining.template",
			LifeSustainingTemplates, true, r.res, section)

		if values, ok := asList(m["values"]); ok {
			for i, val := range values {
				if s, ok := enumField(val, fmt.Sprintf("toggles.life_sustaining.values[%d]", i),
					LifeSustainingValues, false, r.res, section); ok {
					l.Values = append(l.Values, s)
				}
			}
		}
	}
}

func (r *run) assets() {
	const section = "assets"
	m, ok := asMap(r.raw["assets"])
	if !ok {
		return
	}

	for _, assetType := range assetTypes {
		v := m[assetType]
		if isEmpty(v) {
			continue
		}
		if amount, ok := positiveNumberField(v, "assets."+assetType, false, 999_999_999_999, r.res, section); ok {
			if r.out.Assets == nil {
				r.out.Assets = map[string]float64{}
			}
			r.out.Assets[assetType] = amount
		}
	}
}

func (r *run) declarations() {
	const section = "declarations"
	m, ok := asMap(r.raw["declarations"])
	if !ok {
		m = r.raw
	}

	d := &r.out.Declarations
	d.ConfirmReviewed = r.confirmation(m["confirm_reviewed"],
		"declarations.confirm_reviewed", "You must confirm you have reviewed all information", section)
	d.ConfirmComplexAdvice = r.confirmation(m["confirm_complex_advice"],
		"declarations.confirm_complex_advice", "You must acknowledge complex circumstances may require legal advice", section)
	d.ConfirmSuperAndJoint = r.confirmation(m["confirm_super_and_joint"],
		"declarations.confirm_super_and_joint", "You must acknowledge superannuation and jointly held assets may not pass under this will", section)
	d.ConfirmSigningWitness = r.confirmation(m["confirm_signing_witness"],
		"declarations.confirm_signing_witness", "You must acknowledge proper signing and witnessing requirements apply", section)

	if !isEmpty(m["intended_signing_date"]) {
		d.IntendedSigningDate, _ = dateField(m["intended_signing_date"],
			"declarations.intended_signing_date", false, 0, r.now, r.res, section)
	}
}

// crossChecks runs consistency rules that span sections. These produce
// warnings, not errors.
func (r *run) crossChecks(children []payload.Child) {
	executorNames := map[string]bool{}
	for _, e := range r.out.Executors.Primary {
		executorNames[e.FullName] = true
	}
	for _, e := range r.out.Executors.Backup.List {
		executorNames[e.FullName] = true
	}

	if g := r.out.Guardianship; g != nil && g.AppointGuardian && g.Guardian != nil {
		if executorNames[g.Guardian.FullName] {
			r.res.AddWarning("guardianship.guardian.full_name",
				"This person is also appointed as an executor. This is allowed but should be intentional.",
				CodePotentialDuplicate, "guardianship")
		}
	}

	if hasMinor(children) && !r.out.MinorTrusts.Enabled {
		r.res.AddWarning("minor_trusts.enabled",
			"You have minor children but have not enabled trusts for minors. Consider whether this is intentional.",
			CodeMissingTrust, "minor_trusts")
	}
}
