package review

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompanyPlaceholder is replaced by the company name when a template is used.
const CompanyPlaceholder = "{company}"

// Template is one prompt pattern with the topic it steers the review towards.
type Template struct {
	Topic string `yaml:"topic"`
	Text  string `yaml:"text"`
}

// Render substitutes the company name into the template.
func (t Template) Render(company string) string {
	return strings.ReplaceAll(t.Text, CompanyPlaceholder, company)
}

// Catalog holds the templates available to each sentiment bucket.
type Catalog map[Sentiment][]Template

// DefaultCatalog returns the reference prompt set.
func DefaultCatalog() Catalog {
	pos := func(topic, tail string) Template {
		return Template{Topic: topic, Text: "Write a positive customer review for {company}. " + tail}
	}
	neg := func(topic, tail string) Template {
		return Template{Topic: topic, Text: "Write a negative customer review for {company}. " + tail}
	}
	return Catalog{
		Positive: {
			pos("Customer Support", "Mention the excellent customer support."),
			pos("Plan Options", "Highlight the variety of plan options available."),
			pos("Coverage", "Praise the comprehensive coverage provided."),
			pos("Premiums", "Mention the affordable premiums."),
			pos("Claims Processing", "Highlight the quick claims processing."),
			pos("Customer Service", "Appreciate the helpful customer service."),
			pos("Provider Network", "Praise the quality of the network."),
			pos("Access to Care", "Mention the easy access to care."),
			pos("Online Tools", "Appreciate the user-friendly online tools."),
			pos("Preventive Care", "Mention the preventive care coverage."),
			pos("Communication", "Praise the clear communication."),
			pos("Wellness Programs", "Appreciate the health and wellness programs."),
		},
		Neutral: {
			{Topic: "General Experience", Text: "Write a neutral customer review for {company}. Mention that the service was okay but not exceptional."},
		},
		Negative: {
			neg("Claims Processing", "Mention a bad experience with claim processing."),
			neg("Premiums", "Complain about the high premiums."),
			neg("Customer Support", "Mention the terrible customer support."),
			neg("Plan Options", "Complain about the lack of variety of plan options available."),
			neg("Claim Denials", "Complain about claim denials."),
			neg("Billing", "Mention billing issues."),
			neg("Coverage", "Complain about coverage limitations."),
			neg("Customer Service", "Mention negative experiences with customer service."),
			neg("Provider Network", "Complain about network issues."),
			neg("Preauthorization", "Mention preauthorization requirements."),
			neg("Policy Changes", "Complain about policy changes."),
			neg("Transparency", "Mention lack of transparency."),
			neg("Appeals", "Complain about the appeals process."),
		},
	}
}

// LoadCatalog reads a YAML prompt file keyed by sentiment.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prompts: read file: %w", err)
	}

	var raw map[string][]Template
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("prompts: parse yaml: %w", err)
	}

	c := make(Catalog, len(raw))
	for k, templates := range raw {
		s := Sentiment(strings.ToLower(k))
		if !s.Valid() {
			return nil, fmt.Errorf("prompts: unknown sentiment %q", k)
		}
		c[s] = templates
	}
	return c, nil
}
