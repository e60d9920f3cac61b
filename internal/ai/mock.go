package ai

import "fmt"

// Deterministic placeholders used when no API key is configured and the
// policy allows mock results. Keeping them stable makes the fallback
// paths testable.

func mockAnalysis(input string) Analysis {
	return Analysis{
		Title: truncate(input, 20),
		Subtasks: []string{
			fmt.Sprintf("Analyze %q", truncate(input, 20)),
			"Break the work into steps",
			"Start on the first step",
		},
	}
}

func mockPlan(taskTitle string) []string {
	return []string{
		fmt.Sprintf("Plan out %q", truncate(taskTitle, 20)),
		"Work through the steps",
		"Review and wrap up",
	}
}

func mockSummary(prompt string) string {
	return fmt.Sprintf("Mock summary for: %q (no API key configured)", truncate(prompt, 20))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
