package fallback

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

const (
	TopicRepetition      = "repetition"
	TopicGreeting        = "greeting"
	TopicThanks          = "thanks"
	TopicProgramOverview = "program_overview"
	TopicDefault         = "default"

	TopicHistory          = "history"
	TopicProgram          = "program"
	TopicObjectives       = "objectives"
	TopicElectives        = "electives"
	TopicElectiveGroupA   = "elective_group_a"
	TopicElectiveGroupB   = "elective_group_b"
	TopicElectiveGroupC   = "elective_group_c"
	TopicElectiveGroupD   = "elective_group_d"
	TopicInternships      = "internships"
	TopicRequirements     = "requirements"
	TopicCredits          = "credits"
	TopicGraduatePrograms = "graduate_programs"
	TopicFaculty          = "faculty"
	TopicAdvisors         = "advisors"
	TopicResearch         = "research"
	TopicCurriculum       = "curriculum"
	TopicWhatIsCS         = "what_is_cs"
	TopicAdmissions       = "admissions"
)

// The compound program rule needs both of these.
var requiredTopics = []string{TopicProgram, TopicObjectives}

var electiveGroups = []string{
	TopicElectiveGroupA,
	TopicElectiveGroupB,
	TopicElectiveGroupC,
	TopicElectiveGroupD,
}

func isSpecial(name string) bool {
	switch name {
	case TopicRepetition, TopicGreeting, TopicThanks, TopicProgramOverview, TopicDefault:
		return true
	default:
		return false
	}
}

// MatchesTopic reports whether the lowercased message contains any keyword as a substring.
// Matching is not word-bounded: "cs" also matches inside "discuss".
func MatchesTopic(message string, keywords []string) bool {
	message = strings.ToLower(message)

	return pie.Any(keywords, func(keyword string) bool {
		keyword = strings.ToLower(keyword)
		return keyword != "" && strings.Contains(message, keyword)
	})
}
