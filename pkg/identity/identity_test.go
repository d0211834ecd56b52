package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestID_Deterministic(t *testing.T) {
	a := ID("Jane Doe", "company-x")
	b := ID("Jane Doe", "company-x")
	if a != b {
		t.Fatalf("ID not deterministic: %s vs %s", a, b)
	}
	if a.Version() != 5 {
		t.Errorf("ID version = %d, want 5", a.Version())
	}
}

func TestID_CompanyScoped(t *testing.T) {
	if ID("Jane Doe", "company-x") == ID("Jane Doe", "company-y") {
		t.Error("same person at two companies got one identity")
	}
	if ID("Jane Doe", "company-x") == ID("John Doe", "company-x") {
		t.Error("two persons at one company got one identity")
	}
}

func TestID_CaseInsensitiveName(t *testing.T) {
	if ID("JANE DOE", "c") != ID("jane doe", "c") {
		t.Error("name casing changed the identity")
	}
}

func TestID_PinnedAlgorithm(t *testing.T) {
	// Recompute with the raw primitives: any change to namespace, separator
	// or hashing shows up here.
	want := uuid.NewSHA1(uuid.NameSpaceDNS, []byte("jane doe|9b2f"))
	if got := ID("Jane Doe", "9b2f"); got != want {
		t.Errorf("ID = %s, want %s", got, want)
	}
	if got := Key("Jane Doe", "9b2f"); got != "jane doe|9b2f" {
		t.Errorf("Key = %q", got)
	}
}

func TestString(t *testing.T) {
	s := String("Jane Doe", "c")
	if _, err := uuid.Parse(s); err != nil {
		t.Errorf("String returned unparsable uuid %q: %v", s, err)
	}
}
