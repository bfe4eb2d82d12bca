package services

import (
	"fmt"
	"strings"

	"wingman_go_backend/internal/models"
)

const baseSystemPrompt = `You are wingMan, a quirky and enthusiastic dating assistant. Help the user plan dates based on their request. Be concise, specific, and practical. Include venue suggestions, activities, and tips.

Keep it casual with emojis every now and then.
Use the conversation history to maintain context of past dates if available, and build on top of it if requested.
Dates never go as planned, so always includes some backup options, and plan B.
Try to keep the dates timed.
Consider the Weather, Time of Day, whether it's a weekday or weekend, and the User's preferences.
Remind the user to be themselves and have fun!

users might ask for reponses such as analysing their past dates, suggesting new date ideas, or other dating advice. Use the context provided to look up the best possible advice.`

const toolUsagePrompt = `IMPORTANT - TOOL USAGE:
You have access to real-time tools that you MUST use by calling them (not by showing code):
- search_venues: Find real venues with ratings, hours, and addresses
- calculate_distance: Get actual travel times between locations

CRITICAL RULES:
1. CALL THE TOOLS DIRECTLY - don't show code examples or explain how to use them
2. When suggesting venues, you MUST call search_venues first to get real places
3. When discussing travel between locations, you MUST call calculate_distance to get accurate times
4. NEVER write code examples like "print(calculate_distance(...))" - just call the function
5. Present the tool results naturally in your response without mentioning you used a tool

The user sees your final response, not the tool calls. Use the tools silently to get data, then provide a natural, helpful response with that information.`

// ProfileContextLines renders the populated profile fields as prompt lines.
// Unset fields produce no line at all.
func ProfileContextLines(profile *models.UserProfile) []string {
	if profile == nil {
		return nil
	}

	var lines []string
	if profile.Age != nil {
		lines = append(lines, fmt.Sprintf("Age: %d", *profile.Age))
	}
	if profile.Gender != nil {
		lines = append(lines, fmt.Sprintf("Gender: %s", *profile.Gender))
	}
	if profile.Location != nil {
		lines = append(lines, fmt.Sprintf("Location: %s", *profile.Location))
	}
	if profile.Interests != nil {
		lines = append(lines, fmt.Sprintf("Interests: %s", *profile.Interests))
	}
	if profile.DatingGoals != nil {
		lines = append(lines, fmt.Sprintf("Dating goals: %s", *profile.DatingGoals))
	}
	if profile.DatingStyle != nil {
		lines = append(lines, fmt.Sprintf("Dating style: %s", *profile.DatingStyle))
	}
	if profile.Budget != nil {
		lines = append(lines, fmt.Sprintf("Budget preference: %s", *profile.Budget))
	}
	if profile.Outdoor != nil {
		if *profile.Outdoor {
			lines = append(lines, "Outdoor activities: enjoys")
		} else {
			lines = append(lines, "Outdoor activities: prefers indoor")
		}
	}
	if profile.Social != nil {
		if *profile.Social {
			lines = append(lines, "Social settings: enjoys social settings")
		} else {
			lines = append(lines, "Social settings: prefers quieter settings")
		}
	}
	if profile.DietaryRestrictions != nil {
		lines = append(lines, fmt.Sprintf("Dietary restrictions: %s", *profile.DietaryRestrictions))
	}
	if profile.AdditionalNotes != nil {
		lines = append(lines, fmt.Sprintf("Additional context: %s", *profile.AdditionalNotes))
	}

	return lines
}

// BuildSystemPrompt assembles the per-request prompt context: the base
// persona, the user's populated profile fields, their rated date history
// (most-recent-first), and the tool usage instructions. Anonymous requests
// pass nil/empty and get the generic prompt.
func BuildSystemPrompt(profile *models.UserProfile, pastDates []models.DateEntry) string {
	var prompt strings.Builder
	prompt.WriteString(baseSystemPrompt)

	if lines := ProfileContextLines(profile); len(lines) > 0 {
		prompt.WriteString("\n\nUSER PROFILE:\n")
		prompt.WriteString(strings.Join(lines, "\n"))
		prompt.WriteString("\n\nUse this profile information to personalize your advice and suggestions. Tailor date ideas to their location, interests, budget, and preferences.")
	}

	if len(pastDates) > 0 {
		var entries []string
		for i, date := range pastDates {
			entry := []string{fmt.Sprintf("%d. %q", i+1, date.Name)}
			if date.Rating != nil {
				entry = append(entry, fmt.Sprintf("   Rating: %d/5 stars", *date.Rating))
			}
			if date.Notes != nil && *date.Notes != "" {
				entry = append(entry, fmt.Sprintf("   Feedback: %s", *date.Notes))
			}
			entries = append(entries, strings.Join(entry, "\n"))
		}

		plural := ""
		if len(pastDates) > 1 {
			plural = "s"
		}
		prompt.WriteString(fmt.Sprintf("\n\nPAST DATE HISTORY:\nThe user has rated and provided feedback on %d past date%s. Learn from what worked and what didn't to improve future suggestions:\n\n", len(pastDates), plural))
		prompt.WriteString(strings.Join(entries, "\n\n"))
		prompt.WriteString(`

Use this feedback to:
- Suggest similar ideas to highly-rated dates
- Avoid repeating issues from poorly-rated dates
- Understand the user's preferences based on their actual experiences
- Tailor your recommendations to what has proven successful for them`)
	}

	prompt.WriteString("\n\n")
	prompt.WriteString(toolUsagePrompt)

	return prompt.String()
}
