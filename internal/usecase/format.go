package usecase

import (
	"fmt"
	"strings"

	"donation-agent/internal/domain"
)

const (
	helpReply = "I can help you find food donation centers. " +
		"Please tell me what city you're in, like 'Where can I donate food in Delhi?'"
	clarifyLocationReply = "I can help with that! Please tell me the city you are in, " +
		"for example: 'I want to donate in Delhi'."
	askNameReply    = "Great! To proceed, please provide your name."
	askPhoneReply   = "Thank you. Now, what is your phone number?"
	declinedReply   = "Okay, I will not log this request. Is there anything else I can help you with?"
	confirmQuestion = "Would you like me to log this request with these organizations for you? (yes/no)"
)

// formatOrganizations renders the numbered contact listing shown before
// the confirmation question.
func formatOrganizations(orgs []domain.Organization) string {
	if len(orgs) == 0 {
		return "No organizations found."
	}
	var b strings.Builder
	for i, org := range orgs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, org.Name)
		fmt.Fprintf(&b, "   Address: %s\n", org.Address)
		fmt.Fprintf(&b, "   Phone: %s\n", org.Phone)
		fmt.Fprintf(&b, "   Website: %s\n", org.Website)
	}
	return b.String()
}

func searchResultsReply(location string, orgs []domain.Organization) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found these organizations in %s:\n\n", location)
	b.WriteString(formatOrganizations(orgs))
	b.WriteString("\n")
	b.WriteString(confirmQuestion)
	return b.String()
}

func lookupFailedReply(err error) string {
	return fmt.Sprintf("I'm sorry, I couldn't find any organizations. Error: %s", err)
}

func ledgerFailedReply(err error) string {
	return fmt.Sprintf("Error: %s", err)
}
