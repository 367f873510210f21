// Package flags provides Cobra flag helpers shared by reposet commands.
package flags

import (
	"errors"
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix     = "<"
	choicePlaceholderSuffix     = ">"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	unsupportedChoiceMessage    = "unsupported value"
	unsupportedChoiceTemplate   = "%w %q; expected one of %s"
	choiceListSeparatorConstant = ", "
)

// ErrUnsupportedChoice indicates a value outside the allowed choices.
var ErrUnsupportedChoice = errors.New(unsupportedChoiceMessage)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// ParseChoice matches raw case-insensitively against choices and returns the canonical choice.
// A blank value resolves to defaultChoice.
func ParseChoice(raw string, defaultChoice string, choices []string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if len(normalized) == 0 {
		return defaultChoice, nil
	}
	for _, choice := range uniqueChoices(choices) {
		if strings.ToLower(choice) == normalized {
			return choice, nil
		}
	}
	return "", fmt.Errorf(unsupportedChoiceTemplate, ErrUnsupportedChoice, raw, strings.Join(uniqueChoices(choices), choiceListSeparatorConstant))
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := uniqueChoices(choices)
	for index, choice := range highlighted {
		if strings.ToLower(choice) == normalizedDefault && len(normalizedDefault) > 0 {
			highlighted[index] = strings.ToUpper(choice)
		}
	}
	return highlighted
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(trimmedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		unique = append(unique, trimmedChoice)
	}
	return unique
}
