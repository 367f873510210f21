package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "cli",
			choices:        []string{"cli", "go-git"},
			description:    "Version control provider.",
			expectedOutput: "`<CLI|go-git>` Version control provider.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log output format.",
			expectedOutput: "`<structured|CONSOLE>` Log output format.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "beta",
			choices:        []string{"beta", "beta", " alpha ", "ALPHA"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestParseChoice(t *testing.T) {
	choices := []string{"cli", "go-git"}

	testCases := []struct {
		name          string
		raw           string
		expected      string
		expectedError error
	}{
		{name: "ExactMatch", raw: "go-git", expected: "go-git"},
		{name: "CaseInsensitive", raw: " CLI ", expected: "cli"},
		{name: "BlankUsesDefault", raw: "", expected: "cli"},
		{name: "Unsupported", raw: "svn", expectedError: ErrUnsupportedChoice},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			parsed, parseError := ParseChoice(testCase.raw, "cli", choices)
			if testCase.expectedError != nil {
				require.ErrorIs(t, parseError, testCase.expectedError)
				require.Contains(t, parseError.Error(), "cli, go-git")
				return
			}
			require.NoError(t, parseError)
			require.Equal(t, testCase.expected, parsed)
		})
	}
}
