package money

import (
	"golang.org/x/text/language"
)

// Locale holds the separators used to render and read amounts.
type Locale struct {
	Tag     language.Tag
	Group   string
	Decimal string
}

const nbsp = "\u00a0"

var (
	EnUS = Locale{Tag: language.AmericanEnglish, Group: ",", Decimal: "."}
	EnGB = Locale{Tag: language.BritishEnglish, Group: ",", Decimal: "."}
	EsES = Locale{Tag: language.MustParse("es-ES"), Group: ".", Decimal: ","}
	EsMX = Locale{Tag: language.MustParse("es-MX"), Group: ",", Decimal: "."}
	DeDE = Locale{Tag: language.MustParse("de-DE"), Group: ".", Decimal: ","}
	FrFR = Locale{Tag: language.MustParse("fr-FR"), Group: nbsp, Decimal: ","}
	ItIT = Locale{Tag: language.MustParse("it-IT"), Group: ".", Decimal: ","}
	PtBR = Locale{Tag: language.BrazilianPortuguese, Group: ".", Decimal: ","}
)

// DefaultLocale is used when a requested tag matches nothing supported.
var DefaultLocale = EnUS

var supported = []Locale{EnUS, EnGB, EsES, EsMX, DeDE, FrFR, ItIT, PtBR}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, l := range supported {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// Lookup resolves a BCP 47 tag such as "de", "es-AR" or "pt-BR" to the
// closest supported locale.
func Lookup(tag string) Locale {
	if tag == "" {
		return DefaultLocale
	}
	t, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return DefaultLocale
	}
	return supported[idx]
}

// String returns the locale tag.
func (l Locale) String() string {
	return l.Tag.String()
}
