package core

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex  = regexp.MustCompile(`<[^<>]+>`)
	numberRegex   = regexp.MustCompile(`[0-9]+`)
	urlRegex      = regexp.MustCompile(`(http|https)://[^\s]*`)
	emailRegex    = regexp.MustCompile(`[^\s]+@[^\s]+`)
	dollarRegex   = regexp.MustCompile(`[$]+`)
	nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)
)

// tokenDelimiters is the fixed delimiter set used to split the
// normalized body into candidate tokens
const tokenDelimiters = " @$/#.-:&*+=[]?!(){},\"'<>_;%\n\r"

// Normalize turns a raw message into a sequence of cleaned candidate
// tokens. It strips the header block (everything up to and including the
// first blank line), then canonicalizes the body via NormalizeBody. The
// function is total: malformed input degrades to an empty token list.
func Normalize(raw string) []string {
	body := raw
	if idx := strings.Index(raw, "\n\n"); idx >= 0 {
		body = raw[idx+2:]
	}
	return NormalizeBody(body)
}

// NormalizeBody canonicalizes message body text that has no header block
// to strip. Substitution order matters: placeholder words inserted by an
// earlier step must not match a later pattern.
func NormalizeBody(body string) []string {
	body = strings.ToLower(body)
	body = htmlTagRegex.ReplaceAllString(body, " ")
	body = numberRegex.ReplaceAllString(body, " number ")
	body = urlRegex.ReplaceAllString(body, " httpaddr ")
	body = emailRegex.ReplaceAllString(body, " emailaddr ")
	body = dollarRegex.ReplaceAllString(body, " dollar ")

	fields := strings.FieldsFunc(body, func(r rune) bool {
		return strings.ContainsRune(tokenDelimiters, r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		field = nonAlnumRegex.ReplaceAllString(field, "")
		if field == "" {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}
