// Package chatbot answers support questions by matching the message against
// an ordered, per-language pattern table. The table is built once at startup
// and never mutated afterwards.
package chatbot

import (
	"errors"
	"regexp"
)

var (
	ErrNoMatch         = errors.New("question not recognized")
	ErrUnknownLanguage = errors.New("unsupported language")
)

type entry struct {
	pattern  *regexp.Regexp
	response string
}

// Responder holds the immutable language → ordered (pattern, response) table.
type Responder struct {
	tables map[string][]entry
}

// Answer is a matched response echoed back with its language.
type Answer struct {
	Response string `json:"response"`
	Language string `json:"language"`
}

// Respond returns the first entry whose pattern matches the message, walking
// the language's table in declaration order.
func (r *Responder) Respond(language, message string) (Answer, error) {
	table, ok := r.tables[language]
	if !ok {
		return Answer{}, ErrUnknownLanguage
	}

	for _, e := range table {
		if e.pattern.MatchString(message) {
			return Answer{Response: e.response, Language: language}, nil
		}
	}

	return Answer{}, ErrNoMatch
}

// Languages lists the configured language codes.
func (r *Responder) Languages() []string {
	langs := make([]string, 0, len(r.tables))
	for l := range r.tables {
		langs = append(langs, l)
	}
	return langs
}
