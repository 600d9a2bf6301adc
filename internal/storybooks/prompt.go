package storybooks

import (
	"strings"

	"github.com/JaimeStill/storybook/pkg/formatting"
)

// DefaultPromptChars bounds how much page text is used as scene context.
const DefaultPromptChars = 400

// Positional hints and the shared style suffix appended to every prompt.
const (
	HintOpening      = "opening scene, establishing shot"
	HintFinal        = "final scene, conclusion"
	HintMiddle       = "story scene"
	StyleDescriptors = "children's book illustration, vibrant colors, whimsical, storybook art, detailed, high quality"
)

// BuildPrompt composes the image prompt for page number of total using at most
// DefaultPromptChars characters of text as scene context.
func BuildPrompt(text string, number, total int) string {
	return buildPrompt(text, number, total, DefaultPromptChars)
}

func buildPrompt(text string, number, total, chars int) string {
	scene := formatting.Head(text, chars)
	return strings.Join([]string{scene, positionHint(number, total), StyleDescriptors}, ", ")
}

func positionHint(number, total int) string {
	switch {
	case number == 1:
		return HintOpening
	case number == total:
		return HintFinal
	default:
		return HintMiddle
	}
}
