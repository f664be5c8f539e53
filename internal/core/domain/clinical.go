package domain

import "strings"

// Eye identifies which eye the sample was taken from.
type Eye string

const (
	EyeOD Eye = "OD"
	EyeOS Eye = "OS"
	EyeOU Eye = "OU"
	EyeNA Eye = "NA"
)

// Label returns the display form used in exports.
func (e Eye) Label() string {
	switch e {
	case EyeOD:
		return "Right Eye (OD)"
	case EyeOS:
		return "Left Eye (OS)"
	case EyeOU:
		return "Both Eyes (OU)"
	case EyeNA:
		return "Not Applicable (NA)"
	}
	return string(e)
}

// SampleType classifies the submitted specimen.
type SampleType string

const (
	SampleCornealScraping  SampleType = "corneal_scraping"
	SampleConjunctivalSwab SampleType = "conjunctival_swab"
	SampleTearFilm         SampleType = "tear_film"
	SampleContactLens      SampleType = "contact_lens"
	SampleEyelid           SampleType = "eyelid"
	SampleOther            SampleType = "other"
)

// Label returns the display form used in exports.
func (s SampleType) Label() string {
	switch s {
	case SampleCornealScraping:
		return "Corneal Scraping"
	case SampleConjunctivalSwab:
		return "Conjunctival Swab"
	case SampleTearFilm:
		return "Tear Film"
	case SampleContactLens:
		return "Contact Lens"
	case SampleEyelid:
		return "Eyelid"
	case SampleOther:
		return "Other"
	}
	return string(s)
}

// DurationUnit qualifies the symptom duration value.
type DurationUnit string

const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
	DurationYears  DurationUnit = "years"
)

// Label returns the display form used in exports.
func (d DurationUnit) Label() string {
	switch d {
	case DurationDays:
		return "Days"
	case DurationWeeks:
		return "Weeks"
	case DurationMonths:
		return "Months"
	case DurationYears:
		return "Years"
	}
	return string(d)
}

// MedsCategory classifies prior medication when the patient is on treatment.
type MedsCategory string

const (
	MedsAntibiotics MedsCategory = "antibiotics"
	MedsAntifungals MedsCategory = "antifungals"
	MedsAntiviral   MedsCategory = "antiviral"
	MedsSteroid     MedsCategory = "steroid"
	MedsOthers      MedsCategory = "others"
)

// Label returns the display form used in exports.
func (m MedsCategory) Label() string {
	switch m {
	case MedsAntibiotics:
		return "Antibiotics"
	case MedsAntifungals:
		return "Antifungals"
	case MedsAntiviral:
		return "Antiviral"
	case MedsSteroid:
		return "Steroid"
	case MedsOthers:
		return "Others"
	}
	return string(m)
}

// Impression is the clinician's provisional diagnosis category.
type Impression string

const (
	ImpressionBacterial    Impression = "bacterial"
	ImpressionFungal       Impression = "fungal"
	ImpressionAcanthamoeba Impression = "acanthamoeba"
	ImpressionPythium      Impression = "pythium"
	ImpressionViral        Impression = "viral"
	ImpressionOthers       Impression = "others"
)

// Label returns the display form used in exports.
func (i Impression) Label() string {
	switch i {
	case ImpressionBacterial:
		return "Bacterial"
	case ImpressionFungal:
		return "Fungal"
	case ImpressionAcanthamoeba:
		return "Acanthamoeba"
	case ImpressionPythium:
		return "Pythium"
	case ImpressionViral:
		return "Viral"
	case ImpressionOthers:
		return "Others"
	}
	return string(i)
}

// StainList formats the requested stains for display, "N/A" when none.
func StainList(stains []string) string {
	if len(stains) == 0 {
		return "N/A"
	}
	return strings.Join(stains, ", ")
}
