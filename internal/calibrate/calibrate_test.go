package calibrate

import (
	"reflect"
	"testing"
)

func TestCalibrateKnownValues(t *testing.T) {
	// Hand-computed: sqrt compression, rank decay 1.0 / 0.75 / 0.5, no
	// franchise overlap past the anchor key mismatch on the last entry.
	ranked := []Candidate{
		{RawScore: 1.0, FranchiseKey: "Zorro"},
		{RawScore: 0.64, FranchiseKey: "Other"},
		{RawScore: 0.49, FranchiseKey: "Another"},
	}
	got := Calibrate(ranked, 1.0, "Zorro")
	want := []int{98, 81, 70}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Calibrate() = %v, want %v", got, want)
	}
}

func TestCalibrateBounds(t *testing.T) {
	ranked := []Candidate{
		{RawScore: 1.0, FranchiseKey: "Alien"},
		{RawScore: 0.9, FranchiseKey: "Alien"},
		{RawScore: 0.5, FranchiseKey: "Blade"},
		{RawScore: 0.001, FranchiseKey: "Heat"},
		{RawScore: 0, FranchiseKey: "Solaris"},
	}
	for _, d := range Calibrate(ranked, 1.0, "Alien") {
		if d < MinDisplay || d > MaxDisplay {
			t.Errorf("display score %d outside [%d, %d]", d, MinDisplay, MaxDisplay)
		}
	}
}

func TestCalibrateFranchiseBoost(t *testing.T) {
	ranked := []Candidate{
		{RawScore: 1.0, FranchiseKey: "Alien"},
		{RawScore: 0.64, FranchiseKey: "alien"},
		{RawScore: 0.64, FranchiseKey: "Zorro"},
	}
	got := Calibrate(ranked, 1.0, "Alien")

	// Same raw score and adjacent ranks: the franchise sibling must come
	// out ahead despite its case-differing key.
	if got[1] <= got[2] {
		t.Errorf("franchise sibling scored %d, stranger scored %d; want sibling higher", got[1], got[2])
	}
	// sqrt(0.64)*0.75*1.2 = 0.72 -> round(55 + 0.72*43) = 86.
	if got[1] != 86 {
		t.Errorf("boosted score = %d, want 86", got[1])
	}
}

func TestCalibrateAnchorNeverBoosted(t *testing.T) {
	ranked := []Candidate{
		{RawScore: 1.0, FranchiseKey: "Alien"},
		{RawScore: 0.5, FranchiseKey: "Alien"},
	}
	got := Calibrate(ranked, 1.0, "Alien")
	if got[0] != MaxDisplay {
		t.Errorf("anchor display = %d, want %d (boost must not touch rank 0)", got[0], MaxDisplay)
	}
}

func TestCalibrateBoostCap(t *testing.T) {
	// A near-perfect franchise sibling at an early rank would exceed the
	// cap after the 1.2x boost; it must be clamped to 0.95.
	ranked := make([]Candidate, 21)
	ranked[0] = Candidate{RawScore: 1.0, FranchiseKey: "Alien"}
	ranked[1] = Candidate{RawScore: 1.0, FranchiseKey: "Alien"}
	for i := 2; i < len(ranked); i++ {
		ranked[i] = Candidate{RawScore: 0.1, FranchiseKey: "Filler"}
	}
	got := Calibrate(ranked, 1.0, "Alien")
	// round(55 + 0.95*43) = 96.
	if got[1] != 96 {
		t.Errorf("capped boost display = %d, want 96", got[1])
	}
}

func TestCalibrateShortKeyDisablesBoost(t *testing.T) {
	ranked := []Candidate{
		{RawScore: 1.0, FranchiseKey: "Up"},
		{RawScore: 0.64, FranchiseKey: "Up"},
	}
	got := Calibrate(ranked, 1.0, "Up")
	// sqrt(0.64)*0.5 = 0.4 -> round(55 + 0.4*43) = 72, no boost applied.
	if got[1] != 72 {
		t.Errorf("short-key display = %d, want 72 (boost disabled)", got[1])
	}
}

func TestCalibrateEmptyAndSingle(t *testing.T) {
	if got := Calibrate(nil, 1.0, "Alien"); got != nil {
		t.Errorf("Calibrate(nil) = %v, want nil", got)
	}
	got := Calibrate([]Candidate{{RawScore: 1.0, FranchiseKey: "Alien"}}, 1.0, "Alien")
	if len(got) != 1 || got[0] != MaxDisplay {
		t.Errorf("single-candidate result = %v, want [%d]", got, MaxDisplay)
	}
}

func TestCalibrateZeroAnchorSelf(t *testing.T) {
	got := Calibrate([]Candidate{{RawScore: 0, FranchiseKey: "X"}}, 0, "X")
	if len(got) != 1 || got[0] != MinDisplay {
		t.Errorf("zero-anchor result = %v, want [%d]", got, MinDisplay)
	}
}
