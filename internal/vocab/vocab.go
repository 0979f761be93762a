// Package vocab normalizes symptom tokens and exposes the fixed vocabulary the
// safety rules test against. Rules never search free text; they ask whether a
// canonical symptom is a member of the patient's symptom set.
package vocab

import "strings"

// Canonical symptom names.
const (
	Fever            = "fever"
	Headache         = "headache"
	SevereHeadache   = "severe headache"
	NeckStiffness    = "neck stiffness"
	LightSensitivity = "light sensitivity"
	AbdominalPain    = "abdominal pain"
	Pain             = "pain"
	BodyAches        = "body aches"
	JointPain        = "joint pain"
	Cough            = "cough"
	Phlegm           = "phlegm"
	SoreThroat       = "sore throat"
	RunnyNose        = "runny nose"
	Sneezing         = "sneezing"
	Congestion       = "congestion"
	Cold             = "cold"
	Diarrhea         = "diarrhea"
	Vomiting         = "vomiting"
	Nausea           = "nausea"
	Anxiety          = "anxiety"
	Panic            = "panic"
	Nervousness      = "nervousness"
	Restlessness     = "restlessness"
	Worry            = "excessive worry"
	Stress           = "stress"
)

// aliases maps a normalized token to the canonical names it stands for. A
// token may imply more than one name (a severe headache is also a headache).
var aliases = map[string][]string{
	"high fever":      {Fever},
	"low grade fever": {Fever},
	"mild fever":      {Fever},
	"fevers":          {Fever},

	"stiff neck":           {NeckStiffness},
	"sensitivity to light": {LightSensitivity},
	"photophobia":          {LightSensitivity},
	"severe headache":      {SevereHeadache, Headache},
	"intense headache":     {SevereHeadache, Headache},
	"worst headache":       {SevereHeadache, Headache},
	"headaches":            {Headache},

	"stomach pain":     {AbdominalPain},
	"belly pain":       {AbdominalPain},
	"abdominal cramps": {AbdominalPain},
	"body ache":        {BodyAches},
	"muscle pain":      {BodyAches},
	"muscle aches":     {BodyAches},
	"joint ache":       {JointPain},
	"joint aches":      {JointPain},

	"yellow phlegm":    {Phlegm},
	"green phlegm":     {Phlegm},
	"sputum":           {Phlegm},
	"mucus":            {Phlegm},
	"productive cough": {Cough, Phlegm},
	"dry cough":        {Cough},
	"persistent cough": {Cough},
	"coughing":         {Cough},
	"throat pain":      {SoreThroat},
	"scratchy throat":  {SoreThroat},
	"sneeze":           {Sneezing},
	"nasal congestion": {Congestion},
	"stuffy nose":      {Congestion},
	"blocked nose":     {Congestion},

	"loose stools": {Diarrhea},
	"throwing up":  {Vomiting},

	"panic attack":    {Panic, Anxiety},
	"panic attacks":   {Panic, Anxiety},
	"anxious":         {Anxiety},
	"feeling anxious": {Anxiety},
	"nervous":         {Nervousness},
	"restless":        {Restlessness},
	"constant worry":  {Worry},
	"worrying":        {Worry},

	"neck pain and stiffness":    {NeckStiffness},
	"lower right abdominal pain": {AbdominalPain},
}

// Normalize lowercases, trims and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeAll normalizes every token and drops the empty ones.
func NormalizeAll(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Canonical returns the canonical names a token stands for, including the
// token itself.
func Canonical(token string) []string {
	token = Normalize(token)
	if token == "" {
		return nil
	}
	names := []string{token}
	for _, a := range aliases[token] {
		if a != token {
			names = append(names, a)
		}
	}
	return names
}
