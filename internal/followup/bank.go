package followup

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Domain is an interview category that selects a fixed question bank.
type Domain string

const (
	Banking    Domain = "banking"
	IT         Domain = "it"
	Behavioral Domain = "behavioral"
)

// Domains lists every known domain in display order.
var Domains = []Domain{Banking, IT, Behavioral}

// ParseDomain parses s case-insensitively. Surrounding whitespace is ignored.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("followup: unknown domain %q", s)
	}
	return d, nil
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	return slices.Contains(Domains, d)
}

// Title returns the domain name in title case, as shown in summaries.
func (d Domain) Title() string {
	return cases.Title(language.English).String(string(d))
}

// Bank maps each domain to its ordered questions.
type Bank map[Domain][]string

// Questions returns a copy of the questions for d, or nil for an unknown
// domain.
func (b Bank) Questions(d Domain) []string {
	return slices.Clone(b[d])
}

// InterviewBank holds the questions asked during a mock interview.
var InterviewBank = Bank{
	Banking: {
		"What interests you about the banking sector?",
		"How do you stay updated with financial regulations?",
		"Describe a time you managed risk.",
		"What is your understanding of KYC?",
		"Explain a banking product you recently learned about.",
	},
	IT: {
		"Tell me about a recent IT project you worked on.",
		"How do you handle debugging complex issues?",
		"What technologies are you most comfortable with?",
		"Describe your experience with cloud services.",
		"How do you keep your skills updated?",
	},
	Behavioral: {
		"Describe a time when you faced a conflict at work and how you resolved it.",
		"Tell me about a time you demonstrated leadership.",
		"What is your biggest professional failure and what did you learn?",
		"Describe a situation where you had to work under pressure.",
		"How do you handle constructive criticism?",
	},
}

// FollowUpBank holds the questions asked after a free-form answer.
var FollowUpBank = Bank{
	Banking: {
		"Can you explain how interest rates affect customer loans?",
		"Have you ever dealt with a difficult banking customer?",
		"What are current challenges in the banking sector?",
		"How do you maintain compliance with regulations?",
		"What do you understand about AML practices?",
	},
	IT: {
		"Can you describe a debugging challenge you overcame?",
		"What’s your favorite programming language and why?",
		"How do you approach system design?",
		"Have you worked with REST APIs?",
		"Describe a project where you implemented security best practices.",
	},
	Behavioral: {
		"How do you handle feedback from a supervisor?",
		"Describe a time you resolved a team conflict.",
		"How do you stay organized under pressure?",
		"What’s your approach to time management?",
		"Give an example of when you had to quickly adapt to change.",
	},
}
