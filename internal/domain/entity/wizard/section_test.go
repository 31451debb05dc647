package wizard

import "testing"

func TestSectionNext(t *testing.T) {
	tests := []struct {
		section Section
		next    Section
		hasNext bool
	}{
		{SectionInvestment, SectionContact, true},
		{SectionContact, SectionConfirmation, true},
		{SectionConfirmation, SectionPayment, true},
		{SectionPayment, "", false},
	}

	for _, tt := range tests {
		next, ok := tt.section.Next()
		if ok != tt.hasNext || next != tt.next {
			t.Errorf("%s.Next() = %q, %v; want %q, %v", tt.section, next, ok, tt.next, tt.hasNext)
		}
	}
}

func TestNewSection(t *testing.T) {
	if _, err := NewSection("contact"); err != nil {
		t.Errorf("contact should be valid: %v", err)
	}
	if _, err := NewSection("review"); err == nil {
		t.Error("review should be rejected")
	}
}
