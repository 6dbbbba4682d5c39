// Package explain produces plain-English summaries of a will: what it does,
// what it cannot cover, and risk warnings. Output is informational and is
// generated deterministically from the context, never from stored prose.
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"willgen/internal/will/payload"
	"willgen/internal/will/render"
	"willgen/internal/will/willcontext"
)

// RiskLevel grades warning severity.
type RiskLevel string

const (
	LevelInfo     RiskLevel = "info"
	LevelWarning  RiskLevel = "warning"
	LevelCritical RiskLevel = "critical"
)

// Section is one titled passage of the summary.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	order   int
}

// Warning flags a configuration the will maker should reconsider.
type Warning struct {
	Level      RiskLevel `json:"level"`
	Category   string    `json:"category"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// NotCovered names an asset class or instrument a will cannot reach.
type NotCovered struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// Overview identifies the document being summarised.
type Overview struct {
	WillMakerName string `json:"will_maker_name"`
	DocumentType  string `json:"document_type"`
}

// KeyFacts are the headline numbers of the will.
type KeyFacts struct {
	ExecutorCount    int  `json:"executor_count"`
	BeneficiaryCount int  `json:"beneficiary_count"`
	HasGuardian      bool `json:"has_guardian"`
	HasSpecificGifts bool `json:"has_specific_gifts"`
	HasMinorTrusts   bool `json:"has_minor_trusts"`
}

// WarningCounts tallies warnings per severity.
type WarningCounts struct {
	Info     int `json:"info"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Summary is the complete explainability response.
type Summary struct {
	Overview      Overview      `json:"overview"`
	KeyFacts      KeyFacts      `json:"key_facts"`
	Sections      []Section     `json:"sections"`
	NotCovered    []NotCovered  `json:"not_covered"`
	Warnings      []Warning     `json:"warnings"`
	WarningCounts WarningCounts `json:"warning_counts"`
}

// Summarize builds the full plain-English summary for a will context.
func Summarize(c *willcontext.Context) *Summary {
	s := &Summary{
		Overview: Overview{
			WillMakerName: c.WillMaker.FullName,
			DocumentType:  "Last Will and Testament",
		},
		KeyFacts: KeyFacts{
			ExecutorCount:    len(c.Executors),
			BeneficiaryCount: len(c.Beneficiaries),
			HasGuardian:      c.Guardian != nil,
			HasSpecificGifts: c.HasSpecificGifts,
			HasMinorTrusts:   c.HasMinorTrusts,
		},
		NotCovered: notCoveredList(),
		Warnings:   riskWarnings(c),
	}

	s.Sections = append(s.Sections, executorSections(c)...)
	s.Sections = append(s.Sections, distributionSections(c)...)
	s.Sections = append(s.Sections, guardianshipSections(c)...)
	s.Sections = append(s.Sections, specialProvisionSections(c)...)
	sort.SliceStable(s.Sections, func(i, j int) bool {
		return s.Sections[i].order < s.Sections[j].order
	})

	for _, w := range s.Warnings {
		switch w.Level {
		case LevelInfo:
			s.WarningCounts.Info++
		case LevelWarning:
			s.WarningCounts.Warning++
		case LevelCritical:
			s.WarningCounts.Critical++
		}
	}

	return s
}

func executorSections(c *willcontext.Context) []Section {
	var sections []Section

	if len(c.Executors) > 0 {
		names := executorNames(c.Executors)
		var content string
		if len(names) == 1 {
			content = fmt.Sprintf(
				"You have appointed %s as your executor. This person will be responsible for carrying out the instructions in your will, including collecting your assets, paying any debts, and distributing your estate according to your wishes.",
				names[0])
		} else {
			content = fmt.Sprintf(
				"You have appointed %s as your executors. They will work together to carry out the instructions in your will, including collecting your assets, paying any debts, and distributing your estate according to your wishes.",
				joinWithAnd(names))
		}
		sections = append(sections, Section{Title: "Who Will Manage Your Estate", Content: content, order: 1})
	}

	if len(c.BackupExecutors) > 0 {
		names := executorNames(c.BackupExecutors)
		var content string
		if len(names) == 1 {
			content = fmt.Sprintf("If your primary executor cannot act, %s will step in as backup executor.", names[0])
		} else {
			content = fmt.Sprintf("If your primary executors cannot act, %s will step in as backup executors.", joinWithAnd(names))
		}
		sections = append(sections, Section{Title: "Backup Executors", Content: content, order: 2})
	}

	return sections
}

func distributionSections(c *willcontext.Context) []Section {
	var sections []Section

	if c.HasSpecificGifts && len(c.SpecificGifts) > 0 {
		var descriptions []string
		limit := len(c.SpecificGifts)
		if limit > 3 {
			limit = 3
		}
		for _, gift := range c.SpecificGifts[:limit] {
			if gift.GiftType == willcontext.GiftCash {
				descriptions = append(descriptions, fmt.Sprintf("%s to %s", render.Currency(gift.CashAmount), gift.BeneficiaryName))
			} else {
				descriptions = append(descriptions, fmt.Sprintf("%s to %s", gift.ItemDescription, gift.BeneficiaryName))
			}
		}
		if len(c.SpecificGifts) > 3 {
			descriptions = append(descriptions, fmt.Sprintf("and %d other specific gifts", len(c.SpecificGifts)-3))
		}

		sections = append(sections, Section{
			Title: "Specific Gifts",
			Content: fmt.Sprintf(
				"You have made %d specific gift(s): %s. These gifts will be distributed first, before the residue of your estate.",
				len(c.SpecificGifts), strings.Join(descriptions, "; ")),
			order: 3,
		})
	}

	if len(c.ResidueBeneficiaries) > 0 {
		var descriptions []string
		for _, rb := range c.ResidueBeneficiaries {
			if rb.SharePercent != nil {
				descriptions = append(descriptions, fmt.Sprintf("%.1f%% to %s", *rb.SharePercent, rb.BeneficiaryName))
			} else {
				descriptions = append(descriptions, rb.BeneficiaryName)
			}
		}

		content := fmt.Sprintf(
			"After specific gifts and debts are paid, the residue of your estate (everything left over) will be distributed as follows: %s.",
			strings.Join(descriptions, "; "))
		if c.SurvivorshipDays > 0 {
			content += fmt.Sprintf(" Each beneficiary must survive you by %d days to receive their share.", c.SurvivorshipDays)
		}

		sections = append(sections, Section{Title: "Distribution of Your Estate", Content: content, order: 4})
	}

	return sections
}

func guardianshipSections(c *willcontext.Context) []Section {
	if !c.HasGuardianship || c.Guardian == nil {
		return nil
	}

	content := fmt.Sprintf(
		"You have appointed %s as guardian for your minor children. This person will have parental responsibility for your children if you pass away while they are still minors.",
		c.Guardian.FullName)
	if c.BackupGuardian != nil {
		content += fmt.Sprintf(" If %s cannot act, %s will step in as backup guardian.",
			c.Guardian.FullName, c.BackupGuardian.FullName)
	}

	return []Section{{Title: "Guardianship of Minor Children", Content: content, order: 5}}
}

func specialProvisionSections(c *willcontext.Context) []Section {
	var sections []Section

	if c.HasMinorTrusts {
		content := fmt.Sprintf(
			"If any beneficiary is under %d years old at the time of your death, their share will be held in trust until they reach that age. ",
			c.MinorTrustsVestingAge)
		if c.MinorTrustsTrusteeMode == "named_trustee" && c.MinorTrustsTrustee != nil {
			content += fmt.Sprintf("%s will manage the trust.", c.MinorTrustsTrustee.FullName)
		} else {
			content += "Your executors will manage the trust."
		}
		sections = append(sections, Section{Title: "Trusts for Young Beneficiaries", Content: content, order: 6})
	}

	if c.HasFuneralWishes {
		content := "You have expressed preferences for your funeral arrangements. "
		if c.FuneralPreference != "" {
			content += fmt.Sprintf("You prefer %s. ", strings.ReplaceAll(c.FuneralPreference, "_", " "))
		}
		content += "These wishes are not legally binding but provide guidance to your executors."
		sections = append(sections, Section{Title: "Funeral Wishes", Content: content, order: 7})
	}

	if c.HasDigitalAssets {
		sections = append(sections, Section{
			Title:   "Digital Assets",
			Content: "You have provided for the management of your digital assets (online accounts, digital files, etc.). Your executors will have authority to access and manage these assets according to your instructions.",
			order:   8,
		})
	}

	if c.HasPets {
		content := fmt.Sprintf("You have made provision for the care of your %d pet(s).", c.PetsCount)
		if c.PetsCarerName != "" {
			content += fmt.Sprintf(" %s will be responsible for their care.", c.PetsCarerName)
		}
		if c.PetsCashGift != nil && *c.PetsCashGift > 0 {
			content += fmt.Sprintf(" A gift of %s is provided for their expenses.", render.Currency(*c.PetsCashGift))
		}
		sections = append(sections, Section{Title: "Provision for Pets", Content: content, order: 9})
	}

	if c.HasBusinessInterests && len(c.BusinessInterests) > 0 {
		sections = append(sections, Section{
			Title: "Business Interests",
			Content: fmt.Sprintf(
				"You have directed how your interest in %s should be handled. Your executors will manage this according to your instructions.",
				c.BusinessInterests[0].EntityName),
			order: 10,
		})
	}

	if c.HasLifeSustainingStatement {
		sections = append(sections, Section{
			Title:   "Life-Sustaining Treatment",
			Content: "You have expressed your wishes regarding life-sustaining treatment. This statement provides guidance to your attorneys if you are unable to make medical decisions for yourself.",
			order:   11,
		})
	}

	return sections
}

// notCoveredList is fixed: these instruments sit outside any will's reach.
func notCoveredList() []NotCovered {
	return []NotCovered{
		{
			Category:    "Superannuation",
			Description: "Your superannuation benefits are not automatically covered by your will.",
			Reason:      "Superannuation is held in trust by your super fund and is distributed according to the fund's rules and any binding death nomination you have made.",
		},
		{
			Category:    "Life Insurance",
			Description: "Life insurance proceeds are paid directly to nominated beneficiaries.",
			Reason:      "Unless your estate is the nominated beneficiary, life insurance proceeds bypass your will and go directly to the named beneficiary.",
		},
		{
			Category:    "Jointly Owned Property",
			Description: "Property owned as joint tenants passes automatically to the surviving owner.",
			Reason:      "Property held as 'joint tenants' (common for married couples) passes by 'right of survivorship' and is not part of your estate.",
		},
		{
			Category:    "Trust Assets",
			Description: "Assets held in family trusts or other trusts are not covered.",
			Reason:      "Assets held in trust are owned by the trust, not by you personally. The trust deed determines how these assets are managed after your death.",
		},
		{
			Category:    "Company Assets",
			Description: "Assets owned by companies you control are not your personal assets.",
			Reason:      "Companies are separate legal entities. The company's assets belong to the company, not to you personally, even if you own all the shares.",
		},
		{
			Category:    "Enduring Powers of Attorney",
			Description: "This will does not create enduring powers of attorney.",
			Reason:      "Enduring powers of attorney (for financial and personal/health matters) are separate documents that must be prepared and signed while you have capacity.",
		},
		{
			Category:    "Advance Health Directive",
			Description: "This will does not create an advance health directive.",
			Reason:      "An advance health directive is a separate document that provides detailed instructions about your future health care. It is different from the life-sustaining statement in your will.",
		},
	}
}

func riskWarnings(c *willcontext.Context) []Warning {
	var warnings []Warning

	if len(c.Executors) == 1 {
		warnings = append(warnings, Warning{
			Level:      LevelInfo,
			Category:   "executors",
			Title:      "Single Executor",
			Message:    "You have appointed only one executor.",
			Suggestion: "Consider appointing a backup executor in case your primary executor cannot act.",
		})
	}

	if len(c.Executors) > 0 && len(c.BackupExecutors) == 0 {
		warnings = append(warnings, Warning{
			Level:      LevelWarning,
			Category:   "executors",
			Title:      "No Backup Executors",
			Message:    "You have not appointed any backup executors.",
			Suggestion: "If your primary executor cannot act (due to death, incapacity, or refusal), someone may need to apply to the court to administer your estate.",
		})
	}

	if c.HasMinorChildren && !c.HasGuardianship {
		warnings = append(warnings, Warning{
			Level:      LevelCritical,
			Category:   "guardianship",
			Title:      "Minor Children Without Guardian",
			Message:    "You have minor children but have not appointed a guardian.",
			Suggestion: "Without a guardian appointment, decisions about who cares for your children may be made by the court or child safety authorities.",
		})
	}

	if c.HasMinorChildren && !c.HasMinorTrusts {
		warnings = append(warnings, Warning{
			Level:      LevelWarning,
			Category:   "minor_trusts",
			Title:      "Minor Children Without Trust Provisions",
			Message:    "You have minor children but have not enabled trust provisions.",
			Suggestion: "Without trust provisions, any inheritance for minor children may need to be held by the Public Trustee until they turn 18.",
		})
	}

	if c.HasPercentages && math.Abs(c.PercentageSum-100.0) > 0.01 {
		warnings = append(warnings, Warning{
			Level:      LevelCritical,
			Category:   "distribution",
			Title:      "Residue Percentages Do Not Sum to 100%",
			Message:    fmt.Sprintf("Your residue percentages sum to %.1f%%, not 100%%.", c.PercentageSum),
			Suggestion: "This may cause legal uncertainty about how the residue should be distributed.",
		})
	}

	if len(c.Beneficiaries) == 0 {
		warnings = append(warnings, Warning{
			Level:      LevelCritical,
			Category:   "beneficiaries",
			Title:      "No Beneficiaries",
			Message:    "You have not named any beneficiaries.",
			Suggestion: "Without beneficiaries, your estate may pass according to intestacy laws.",
		})
	}

	if c.HasPartner && c.DistributionScheme == "children_equal" {
		warnings = append(warnings, Warning{
			Level:      LevelInfo,
			Category:   "distribution",
			Title:      "Partner Excluded from Distribution",
			Message:    "You have a partner but your distribution scheme does not include them.",
			Suggestion: "Consider whether this reflects your intentions, as partners may have legal claims.",
		})
	}

	if c.HasExclusions {
		warnings = append(warnings, Warning{
			Level:      LevelInfo,
			Category:   "exclusions",
			Title:      "Persons Excluded from Will",
			Message:    "You have excluded one or more persons from your will.",
			Suggestion: "Excluded persons may challenge your will. Consider documenting your reasons separately with your solicitor.",
		})
	}

	if c.DigitalAssetsEnabled && c.DigitalAssetsInstructionsLocation == "" {
		warnings = append(warnings, Warning{
			Level:      LevelInfo,
			Category:   "digital_assets",
			Title:      "Digital Assets Without Instructions Location",
			Message:    "You have enabled digital assets but not specified where instructions are kept.",
			Suggestion: "Consider creating a secure record of your digital asset instructions.",
		})
	}

	if c.SurvivorshipDays < 30 {
		warnings = append(warnings, Warning{
			Level:      LevelInfo,
			Category:   "survivorship",
			Title:      "Short Survivorship Period",
			Message:    fmt.Sprintf("Your survivorship period is only %d days.", c.SurvivorshipDays),
			Suggestion: "A longer period (e.g., 30 days) may simplify estate administration.",
		})
	}

	if c.PetsEnabled && c.PetsCashGift != nil && *c.PetsCashGift > 0 && c.PetsCarerName == "" {
		warnings = append(warnings, Warning{
			Level:      LevelWarning,
			Category:   "pets",
			Title:      "Pet Gift Without Carer",
			Message:    "You have provided a cash gift for pets but not named a carer.",
			Suggestion: "Consider naming a specific person to care for your pets.",
		})
	}

	if c.Guardian != nil {
		guardianName := strings.ToLower(c.Guardian.FullName)
		for _, executor := range c.Executors {
			if strings.ToLower(executor.FullName) == guardianName {
				warnings = append(warnings, Warning{
					Level:      LevelInfo,
					Category:   "appointments",
					Title:      "Same Person as Executor and Guardian",
					Message:    fmt.Sprintf("%s is appointed as both executor and guardian.", executor.FullName),
					Suggestion: "This is common and often practical, but consider potential conflicts of interest.",
				})
				break
			}
		}
	}

	if c.HasPercentages && len(c.ResidueBeneficiaries) > 3 {
		warnings = append(warnings, Warning{
			Level:      LevelInfo,
			Category:   "distribution",
			Title:      "Complex Distribution Scheme",
			Message:    "You have a complex distribution with multiple beneficiaries and percentages.",
			Suggestion: "Consider whether this complexity is necessary and how it may affect administration costs.",
		})
	}

	return warnings
}

func executorNames(executors []payload.Executor) []string {
	names := make([]string, len(executors))
	for i, e := range executors {
		names[i] = e.FullName
	}
	return names
}

func joinWithAnd(names []string) string {
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
