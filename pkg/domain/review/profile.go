package review

// Profile captures the user's review configuration: which label marks
// delegated work, how projects group into life areas, and how many tasks
// per area a weekly plan must touch.
type Profile struct {
	Name          string              `yaml:"name" json:"name"`
	WaitingLabel  string              `yaml:"waiting_label" json:"waiting_label"`
	WeeklyLabel   string              `yaml:"weekly_label" json:"weekly_label"`
	Areas         map[string][]string `yaml:"areas" json:"areas"`                   // area name -> project names
	WeeklyTouches map[string]int      `yaml:"weekly_touches" json:"weekly_touches"` // area name -> minimum selections
	Exclusions    []string            `yaml:"exclusions" json:"exclusions"`         // project names exempt from checks
	MaxDueToday   int                 `yaml:"max_due_today" json:"max_due_today"`
}

// DefaultProfile returns the configuration used when no profile.yaml exists.
func DefaultProfile() *Profile {
	return &Profile{
		Name:         "Default",
		WaitingLabel: "waiting",
		WeeklyLabel:  "this_week",
		MaxDueToday:  15,
	}
}

// Excluded reports whether a project name is exempt from review checks.
func (p *Profile) Excluded(projectName string) bool {
	for _, name := range p.Exclusions {
		if name == projectName {
			return true
		}
	}
	return false
}

// AreaForProject returns the life area a project name belongs to, or "".
func (p *Profile) AreaForProject(projectName string) string {
	for area, projects := range p.Areas {
		for _, name := range projects {
			if name == projectName {
				return area
			}
		}
	}
	return ""
}
