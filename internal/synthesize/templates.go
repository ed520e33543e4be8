package synthesize

import (
	"fmt"
	"sort"
	"strings"

	"distill/internal/services"
)

// Template shapes the synthesized output for a class of recordings.
type Template struct {
	Name        string
	Description string
	System      string
}

var templates = map[string]Template{
	"basic_summary": {
		Name:        "basic_summary",
		Description: "General-purpose summary of any recording",
		System: `You are an expert at distilling spoken content into clear written summaries.
Summarize the transcript you are given. Open with a one-paragraph overview,
then list the main points as bullets, and close with any conclusions or
takeaways. Preserve concrete facts, names, and numbers. Do not invent
content that is not in the transcript.`,
	},
	"meeting_minutes": {
		Name:        "meeting_minutes",
		Description: "Structured minutes with decisions and action items",
		System: `You are a professional minute-taker. Turn the transcript into meeting
minutes with these sections: Attendees (only if names are mentioned),
Agenda Topics, Discussion Summary, Decisions Made, and Action Items with
owners where stated. Use neutral, factual language. Mark anything unclear
in the transcript as [inaudible] rather than guessing.`,
	},
	"lecture_summary": {
		Name:        "lecture_summary",
		Description: "Academic summary organized by concept",
		System: `You are an academic note-taker. Summarize the lecture transcript by
concept: for each major topic, give the core idea, key definitions, and any
examples the speaker used. Keep the speaker's terminology. End with a short
list of points the speaker emphasized or repeated.`,
	},
	"tutorial_guide": {
		Name:        "tutorial_guide",
		Description: "Step-by-step guide extracted from a walkthrough",
		System: `You are a technical writer. Convert the tutorial transcript into a
step-by-step guide: prerequisites first, then numbered steps in the order
the speaker performed them, each with the commands, settings, or values
mentioned. Note warnings or pitfalls the speaker called out. Omit filler
and asides.`,
	},
	"project_update": {
		Name:        "project_update",
		Description: "Status report with progress, blockers, and next steps",
		System: `You are a project coordinator. Turn the transcript into a status update
with sections: Progress Since Last Update, Current Blockers, Risks, and
Next Steps. Attribute statements to speakers when names are available.
Keep it brief and factual.`,
	},
	"study_notes": {
		Name:        "study_notes",
		Description: "Revision notes with key terms and self-test questions",
		System: `You are a study coach. Turn the transcript into revision notes: a short
outline of the material, a glossary of key terms with one-line definitions,
and five self-test questions (with answers) covering the most important
points.`,
	},
}

const mapSystemPrompt = `You are condensing one segment of a longer transcript. Write dense notes
covering every distinct point, fact, name, and number in this segment.
Use short declarative sentences. Do not editorialize, and do not mention
that this is a segment or refer to other segments.`

const reduceSystemPrompt = `You are merging notes taken over consecutive segments of one recording.
The notes are given in order. Lines reading "[notes unavailable for
segment N]" mark gaps where a segment could not be processed; acknowledge
gaps only if they matter to the result. Merge overlapping points, keep
the original order of topics, and produce a single coherent document.`

// Lookup returns the named template. Unknown names list the valid choices.
func Lookup(name string) (Template, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if tpl, ok := templates[key]; ok {
		return tpl, nil
	}
	msg := fmt.Sprintf("unknown template %q (valid: %s)", name, strings.Join(Names(), ", "))
	return Template{}, services.Wrap(services.ErrConfiguration, "synthesize", "template", msg, nil)
}

// Names returns the registered template names in sorted order.
func Names() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// userPrompt builds the user message for a direct synthesis call.
func userPrompt(transcript string, targetLength string) string {
	var b strings.Builder
	if hint := lengthHint(targetLength); hint != "" {
		b.WriteString(hint)
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript:\n\n")
	b.WriteString(transcript)
	return b.String()
}

func lengthHint(targetLength string) string {
	switch strings.ToLower(strings.TrimSpace(targetLength)) {
	case "", "medium":
		return ""
	case "short":
		return "Keep the result short: at most half a page."
	case "long":
		return "Be thorough: cover every topic in the transcript in detail."
	default:
		return ""
	}
}
