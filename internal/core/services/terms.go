package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/coach/internal/core/domain"
)

// domainVocabulary lists Canvas LMS terms matched as substrings of a question.
var domainVocabulary = []string{
	"opdracht", "assignment", "cijfer", "grade", "gradebook",
	"rubric", "beoordeling", "quiz", "toets", "tentamen",
	"module", "cursus", "course", "pagina", "page",
	"discussie", "discussion", "aankondiging", "announcement", "inlevering",
	"submission", "deadline", "speedgrader", "peer review", "feedback",
	"groep", "group", "student", "docent", "weging",
	"punten", "points", "leeruitkomst", "outcome", "kalender",
	"bestand", "publiceren", "instelling", "enrollment", "canvas",
}

// actionVerbs bias ranking toward how-to documents. They match whole words only.
var actionVerbs = []string{
	"maak", "maken", "aanmaken", "wijzig", "wijzigen", "aanpassen",
	"instellen", "stel", "toevoegen", "verwijderen",
	"create", "make", "change", "set", "add", "edit", "delete",
}

var (
	digitRun     = regexp.MustCompile(`\b\d+\b`)
	quotedPhrase = regexp.MustCompile(`["“]([^"“”]+)["”]`)
	wordPattern  = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// ExtractTerms derives the salient search terms of a question.
// It is pure: the same question always yields the same set.
func ExtractTerms(question string) domain.SearchTermSet {
	var terms domain.SearchTermSet
	lower := strings.ToLower(question)

	for _, v := range domainVocabulary {
		if strings.Contains(lower, v) {
			terms.Add(v)
		}
	}

	for _, d := range digitRun.FindAllString(lower, -1) {
		terms.Add(d)
	}

	for _, m := range quotedPhrase.FindAllStringSubmatch(question, -1) {
		terms.Add(m[1])
	}

	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = struct{}{}
	}
	for _, v := range actionVerbs {
		if _, ok := words[v]; ok {
			terms.Add(v)
		}
	}

	return terms
}
