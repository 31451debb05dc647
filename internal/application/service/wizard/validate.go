package wizard

import (
	"regexp"
	"strings"

	domaininvestor "invest-checkout/internal/domain/entity/investor"
	domainwizard "invest-checkout/internal/domain/entity/wizard"
)

const (
	msgFirstNameRequired = "First name is required"
	msgLastNameRequired  = "Last name is required"
	msgEmailRequired     = "Email is required"
	msgEmailInvalid      = "Please enter a valid email address"
)

// emailPattern accepts local@domain-with-dot addresses without
// attempting full RFC validation.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateField validates a single contact field in place, recording or
// clearing its error message.
func (s *Service) validateField(st *domainwizard.Session, field domaininvestor.ContactField) {
	var msg string
	switch field {
	case domaininvestor.FieldFirstName:
		if strings.TrimSpace(st.Contact.FirstName) == "" {
			msg = msgFirstNameRequired
		}
	case domaininvestor.FieldLastName:
		if strings.TrimSpace(st.Contact.LastName) == "" {
			msg = msgLastNameRequired
		}
	case domaininvestor.FieldEmail:
		email := strings.TrimSpace(st.Contact.Email)
		switch {
		case email == "":
			msg = msgEmailRequired
		case !emailPattern.MatchString(email):
			msg = msgEmailInvalid
		}
	}

	if msg == "" {
		delete(st.Contact.Errors, field)
	} else {
		st.Contact.Errors[field] = msg
	}
}

// validateContact runs full contact validation, marking every identity
// field touched so all errors become visible at once. Reports whether
// the form is complete and well-formed.
func (s *Service) validateContact(st *domainwizard.Session) bool {
	fields := []domaininvestor.ContactField{
		domaininvestor.FieldFirstName,
		domaininvestor.FieldLastName,
		domaininvestor.FieldEmail,
	}
	for _, field := range fields {
		st.Contact.Touched[field] = true
		s.validateField(st, field)
	}
	return len(st.Contact.Errors) == 0
}
