package mindee

import (
	"context"
	"regexp"
	"strings"
)

// Fields holds the seven attributes read off an identity document. A value
// the extraction service could not recognize is an empty string, never
// absent.
type Fields struct {
	Name           string
	Surname        string
	IDNumber       string
	BirthDate      string
	Sex            string
	Nationality    string
	PersonalNumber string
}

// Empty reports whether no attribute was recognized at all.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// Extractor submits a document image and returns the parsed fields. The live
// implementation is Client; tests substitute a deterministic fake.
type Extractor interface {
	Extract(ctx context.Context, path string) (Fields, error)
}

var (
	reDocumentNumber = regexp.MustCompile(`Document Number:\s*(.*)`)
	reSurnames       = regexp.MustCompile(`Surnames:\s*(.*)`)
	reGivenNames     = regexp.MustCompile(`Given Names:\s*(.*)`)
	reSex            = regexp.MustCompile(`Sex:\s*(.*)`)
	reBirthDate      = regexp.MustCompile(`Birth Date:\s*(.*)`)
	reNationality    = regexp.MustCompile(`Nationality:\s*(.*)`)
	rePersonalNumber = regexp.MustCompile(`Personal Number:\s*(.*)`)
)

// ScrapeText pulls the seven fields out of a plain-text rendering of an
// extraction result by matching label-prefixed lines. A missing label
// yields an empty string. This is the degraded path, consulted only when
// the structured prediction holds no data at all.
func ScrapeText(text string) Fields {
	match := func(re *regexp.Regexp) string {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		return strings.TrimSpace(m[1])
	}
	return Fields{
		Name:           match(reGivenNames),
		Surname:        match(reSurnames),
		IDNumber:       match(reDocumentNumber),
		BirthDate:      match(reBirthDate),
		Sex:            match(reSex),
		Nationality:    match(reNationality),
		PersonalNumber: match(rePersonalNumber),
	}
}
