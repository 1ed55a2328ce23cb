// Package catalog holds the fixed set of eight mood/health icons shared by
// the create flow, the edit flow and the profile statistics. There is
// exactly one copy of this catalog in the app.
package catalog

// Entry maps an icon token to its display label and the suggestion text the
// create flow offers as a quick-fill template.
type Entry struct {
	Icon       string `json:"icon"`
	Label      string `json:"label"`
	Suggestion string `json:"suggestion"`
}

var entries = []Entry{
	{Icon: "heart-outline", Label: "Health", Suggestion: "Stay hydrated, eat balanced meals, and rest well!"},
	{Icon: "happy-outline", Label: "Happy", Suggestion: "Keep doing what makes you happy and stay positive!"},
	{Icon: "sad-outline", Label: "Sad", Suggestion: "It's okay to feel down. Talk to someone or relax with self-care."},
	{Icon: "alert-circle-outline", Label: "Angry", Suggestion: "Take a deep breath and try to calm down. Avoid stress triggers."},
	{Icon: "heart-half-outline", Label: "Love", Suggestion: "Spend quality time with loved ones or express your feelings."},
	{Icon: "fitness-outline", Label: "Fitness", Suggestion: "Exercise regularly and stay active for a healthy body and mind."},
	{Icon: "brain-outline", Label: "Mental Health", Suggestion: "Practice mindfulness, meditate, or take a short break to refresh your mind."},
	{Icon: "bed-outline", Label: "Rest", Suggestion: "Ensure adequate sleep and relaxation to recharge your body."},
}

// Entries returns a copy of the catalog in display order.
func Entries() []Entry {
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return copied
}

// Icons returns the icon tokens in display order.
func Icons() []string {
	icons := make([]string, 0, len(entries))
	for _, entry := range entries {
		icons = append(icons, entry.Icon)
	}
	return icons
}

func IsValidIcon(icon string) bool {
	for _, entry := range entries {
		if entry.Icon == icon {
			return true
		}
	}
	return false
}
