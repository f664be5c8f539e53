package domain

import "testing"

func TestAssignmentStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from AssignmentStatus
		to   AssignmentStatus
		want bool
	}{
		{AssignmentUnassigned, AssignmentAssigned, true},
		{AssignmentAssigned, AssignmentCompleted, true},
		{AssignmentAssigned, AssignmentInProgress, true},
		{AssignmentInProgress, AssignmentCompleted, true},
		{AssignmentUnassigned, AssignmentCompleted, false},
		{AssignmentUnassigned, AssignmentInProgress, false},
		{AssignmentAssigned, AssignmentUnassigned, false},
		{AssignmentCompleted, AssignmentAssigned, false},
		{AssignmentCompleted, AssignmentUnassigned, false},
		{AssignmentCompleted, AssignmentInProgress, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestCase_Claimable(t *testing.T) {
	cases := []struct {
		name       string
		status     CaseStatus
		assignment AssignmentStatus
		want       bool
	}{
		{"pending unassigned", CaseStatusPending, AssignmentUnassigned, true},
		{"pending assigned", CaseStatusPending, AssignmentAssigned, false},
		{"completed", CaseStatusCompleted, AssignmentCompleted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Case{Status: tc.status, AssignmentStatus: tc.assignment}
			if got := c.Claimable(); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCase_ReportEligible(t *testing.T) {
	pending := &Case{Status: CaseStatusPending, AssignmentStatus: AssignmentAssigned}
	if !pending.ReportEligible() {
		t.Error("pending case must be eligible for a report")
	}

	completed := &Case{Status: CaseStatusCompleted, AssignmentStatus: AssignmentCompleted}
	if completed.ReportEligible() {
		t.Error("completed case must not be eligible for another report")
	}
}

func TestLabels_MatchExportForms(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{EyeOD.Label(), "Right Eye (OD)"},
		{EyeOS.Label(), "Left Eye (OS)"},
		{EyeOU.Label(), "Both Eyes (OU)"},
		{EyeNA.Label(), "Not Applicable (NA)"},
		{SampleCornealScraping.Label(), "Corneal Scraping"},
		{SampleConjunctivalSwab.Label(), "Conjunctival Swab"},
		{DurationWeeks.Label(), "Weeks"},
		{ImpressionAcanthamoeba.Label(), "Acanthamoeba"},
		{MedsAntifungals.Label(), "Antifungals"},
		{QualityModerate.Label(), "Moderate"},
		{CaseStatusPending.Label(), "Pending"},
		{AssignmentInProgress.Label(), "In Progress"},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("expected label %q, got %q", tc.want, tc.got)
		}
	}
}

func TestStainList(t *testing.T) {
	if got := StainList(nil); got != "N/A" {
		t.Errorf("empty stains: expected N/A, got %q", got)
	}
	if got := StainList([]string{"Grams", "KOH-CFW"}); got != "Grams, KOH-CFW" {
		t.Errorf("expected joined list, got %q", got)
	}
}
