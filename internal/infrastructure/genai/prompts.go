package genai

import (
	"bytes"
	"fmt"
	"text/template"

	"habit-garden/internal/domain/service"
)

var (
	motivationTmpl = template.Must(template.New("motivation").Parse(
		`You are a warm, upbeat habit coach for a gardening-themed habit tracker where each habit is a plant.
Write one or two short sentences of encouragement for the habit "{{.HabitName}}".
Current streak: {{.Streak}} day(s). Longest streak: {{.LongestStreak}} day(s).
{{- if .CompletedToday}}
The user already completed it today; celebrate that.
{{- else}}
The user has not completed it yet today; gently invite them to.
{{- end}}
Do not use hashtags or emojis.`))

	struggleTmpl = template.Must(template.New("struggle").Parse(
		`You are a kind habit coach. The user has missed the habit "{{.HabitName}}" for {{.MissedDays}} days.
{{- if .HabitDescription}}
Habit description: {{.HabitDescription}}
{{- end}}
Acknowledge that slipping is normal and suggest one small, concrete step to restart today.
Keep it under three sentences.`))

	storyTmpl = template.Must(template.New("story").Parse(
		`Write a short, whimsical story (under 120 words) about {{.UserName}} tending a magical garden.
Their plant grows from the habit "{{.HabitName}}", now on a {{.Streak}} day streak.
End on an encouraging note.`))

	avatarTmpl = template.Must(template.New("avatar").Parse(
		`A soft, abstract, colorful avatar inspired by the name "{{.}}", flowing organic shapes, pastel garden palette, no text, no letters.`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

func motivationPrompt(p service.MotivationPrompt) (string, error) {
	return render(motivationTmpl, p)
}

func strugglePrompt(p service.StrugglePrompt) (string, error) {
	return render(struggleTmpl, p)
}

func storyPrompt(p service.StoryPrompt) (string, error) {
	return render(storyTmpl, p)
}

func avatarPrompt(name string) (string, error) {
	return render(avatarTmpl, name)
}
