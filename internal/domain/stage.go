package domain

type ShellKey string

const (
	ShellHome       ShellKey = "home"
	ShellProgramme  ShellKey = "programme"
	ShellPolicies   ShellKey = "policies"
	ShellPlaces     ShellKey = "places"
	ShellEvidence   ShellKey = "evidence"
	ShellEngage     ShellKey = "engage"
	ShellDecisions  ShellKey = "decisions"
	ShellMonitoring ShellKey = "monitoring"
)

type StageKey string

const (
	StageScoping    StageKey = "scoping"
	StageG1         StageKey = "g1"
	StageContent    StageKey = "content"
	StageG2         StageKey = "g2"
	StageDraft      StageKey = "draft"
	StageG3         StageKey = "g3"
	StageSubmission StageKey = "submission"
	StageExam       StageKey = "exam"
	StageAdoption   StageKey = "adoption"
	StageMonitoring StageKey = "monitoring"
)

type Stage struct {
	Key   StageKey `json:"key"`
	Label string   `json:"label"`
	Shell ShellKey `json:"shell"`
}

// Stages is the statutory sequence, in order, with the shell each stage opens.
var Stages = []Stage{
	{StageScoping, "Scoping", ShellEngage},
	{StageG1, "G1", ShellProgramme},
	{StageContent, "Content & Evidence", ShellEngage},
	{StageG2, "G2", ShellProgramme},
	{StageDraft, "Draft Plan", ShellPolicies},
	{StageG3, "G3", ShellProgramme},
	{StageSubmission, "Submission", ShellProgramme},
	{StageExam, "Exam", ShellDecisions},
	{StageAdoption, "Adoption", ShellDecisions},
	{StageMonitoring, "Monitoring", ShellMonitoring},
}

// StageIndex returns the position of key in Stages, or -1.
func StageIndex(key StageKey) int {
	for i, s := range Stages {
		if s.Key == key {
			return i
		}
	}
	return -1
}
