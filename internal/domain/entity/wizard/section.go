package wizard

import "fmt"

// Section is one of the four sequential panels of the checkout wizard.
type Section string

const (
	SectionInvestment   Section = "investment"
	SectionContact      Section = "contact"
	SectionConfirmation Section = "confirmation"
	SectionPayment      Section = "payment"
)

// SectionOrder is the fixed linear progression through the wizard.
var SectionOrder = []Section{
	SectionInvestment,
	SectionContact,
	SectionConfirmation,
	SectionPayment,
}

func (s Section) String() string {
	return string(s)
}

func (s Section) IsValid() bool {
	switch s {
	case SectionInvestment, SectionContact, SectionConfirmation, SectionPayment:
		return true
	default:
		return false
	}
}

// Next returns the section following s, or false when s is terminal.
func (s Section) Next() (Section, bool) {
	for i, sec := range SectionOrder {
		if sec == s && i < len(SectionOrder)-1 {
			return SectionOrder[i+1], true
		}
	}
	return "", false
}

func NewSection(s string) (Section, error) {
	sec := Section(s)
	if !sec.IsValid() {
		return "", fmt.Errorf("invalid section: %s", s)
	}
	return sec, nil
}
