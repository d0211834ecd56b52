package filing

import (
	"errors"
	"testing"
)

func incorporationPages(electronic bool) [][]string {
	first := []string{"IN01(ef) Application to register a company"}
	if electronic {
		first = append(first, "Electronically filed document for Company Number: 07101408")
	}
	return [][]string{
		first,
		{
			"INITIAL SHAREHOLDINGS",
			"Name: DR JANE DOE",
			"Address: 1 HIGH STREET",
			"LONDON",
			"Class of share: ORDINARY",
			"Number of shares: 100",
			"Currency: GBP",
			"Nominal value of each share: 1",
			"Amount unpaid: 0",
			"Amount paid: 1",
			"Name: ACME HOLDINGS LTD",
			"Address: 2 LOW ROAD",
			"Class of share: ORDINARY",
			"Number of shares: 50",
			"Currency: GBP",
			"Nominal value of",
			"0.01",
			"Amount unpaid: 0",
			"Amount paid: 0.01",
			"STATEMENT OF COMPLIANCE",
			"Name: SHOULD NOT APPEAR",
		},
	}
}

func TestParseIncorporation(t *testing.T) {
	inc, err := ParseIncorporation(incorporationPages(true))
	if err != nil {
		t.Fatalf("ParseIncorporation: %v", err)
	}
	if len(inc.Shareholders) != 2 {
		t.Fatalf("got %d shareholders: %+v", len(inc.Shareholders), inc.Shareholders)
	}

	jane := inc.Shareholders[0]
	if jane.Name != "JANE DOE" || jane.IsOrganization {
		t.Errorf("name = %q org=%v", jane.Name, jane.IsOrganization)
	}
	if len(jane.Address) != 2 || jane.Address[0] != "1 HIGH STREET" || jane.Address[1] != "LONDON" {
		t.Errorf("address = %q", jane.Address)
	}
	if jane.ShareType != "ORDINARY" || jane.Currency != "GBP" {
		t.Errorf("share type/currency = %q/%q", jane.ShareType, jane.Currency)
	}
	if jane.Shares == nil || *jane.Shares != 100 {
		t.Errorf("shares = %v", jane.Shares)
	}
	if jane.NominalValue == nil || *jane.NominalValue != 1 {
		t.Errorf("nominal value = %v", jane.NominalValue)
	}
	if jane.AmountUnpaid == nil || *jane.AmountUnpaid != 0 || jane.AmountPaid == nil || *jane.AmountPaid != 1 {
		t.Errorf("amounts = %v/%v", jane.AmountUnpaid, jane.AmountPaid)
	}

	acme := inc.Shareholders[1]
	if acme.Name != "ACME HOLDINGS LTD" || !acme.IsOrganization {
		t.Errorf("acme = %+v", acme)
	}
	if acme.NominalValue == nil || *acme.NominalValue != 0.01 {
		t.Errorf("nominal value from next line = %v", acme.NominalValue)
	}
	if len(acme.Address) != 1 {
		t.Errorf("value line leaked into address: %q", acme.Address)
	}
}

func TestParseIncorporation_NotElectronic(t *testing.T) {
	_, err := ParseIncorporation(incorporationPages(false))
	if !errors.Is(err, ErrNotReadable) {
		t.Fatalf("err = %v, want ErrNotReadable", err)
	}
	var ce *CodedError
	if !errors.As(err, &ce) || ce.Code != 100 {
		t.Errorf("coded error = %+v", ce)
	}
}

func TestParseIncorporation_MarkerAfterPageThree(t *testing.T) {
	pages := [][]string{{"a"}, {"b"}, {"c"}, {"Electronically filed document"}}
	if _, err := ParseIncorporation(pages); !errors.Is(err, ErrNotReadable) {
		t.Fatalf("err = %v, want ErrNotReadable", err)
	}
}

func TestParseIncorporation_NameContinuation(t *testing.T) {
	pages := [][]string{{
		"Electronically filed document",
		"INITIAL SHAREHOLDINGS",
		"Name: JOHN",
		"SMITH",
		"Address: 3 MILL LANE",
		"Number of shares: 1,000",
	}}
	inc, err := ParseIncorporation(pages)
	if err != nil {
		t.Fatalf("ParseIncorporation: %v", err)
	}
	if len(inc.Shareholders) != 1 {
		t.Fatalf("got %+v", inc.Shareholders)
	}
	got := inc.Shareholders[0]
	if got.Name != "JOHN SMITH" {
		t.Errorf("name = %q, want JOHN SMITH", got.Name)
	}
	if got.Shares == nil || *got.Shares != 1000 {
		t.Errorf("shares = %v", got.Shares)
	}
	if got.NominalValue != nil {
		t.Errorf("nominal value = %v, want nil", *got.NominalValue)
	}
}

func TestParseIncorporation_BadShareCount(t *testing.T) {
	pages := [][]string{{
		"Electronically filed document",
		"INITIAL SHAREHOLDINGS",
		"Name: JOHN SMITH",
		"Number of shares: ONE HUNDRED",
	}}
	_, err := ParseIncorporation(pages)
	var pe *ParseError
	if !errors.As(err, &pe) || !errors.Is(err, ErrBadShareCount) {
		t.Fatalf("err = %v, want ParseError(ErrBadShareCount)", err)
	}
}

func TestParseIncorporation_BadAmountIsNil(t *testing.T) {
	pages := [][]string{{
		"Electronically filed document",
		"INITIAL SHAREHOLDINGS",
		"Name: JOHN SMITH",
		"Amount paid: unknown",
	}}
	inc, err := ParseIncorporation(pages)
	if err != nil {
		t.Fatalf("ParseIncorporation: %v", err)
	}
	if inc.Shareholders[0].AmountPaid != nil {
		t.Errorf("amount paid = %v, want nil", *inc.Shareholders[0].AmountPaid)
	}
}

func TestSplitKeyed(t *testing.T) {
	fields, remain := splitKeyed("class of share: ordinary number of shares: 10", initialKeys)
	if fields["class_of_share"] != "ORDINARY" || fields["number_of_shares"] != "10" {
		t.Errorf("fields = %v", fields)
	}
	if len(remain) != len(initialKeys)-2 {
		t.Errorf("remain = %v", remain)
	}
}
