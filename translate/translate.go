// Package translate renders the en-US message formats used throughout the
// machine in the user's locale.
package translate

import (
	"log"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var printer *message.Printer

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("xjx: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}

// Decimal formats a machine word the way the user's locale groups digits.
// Image files and pipe messages never use this form; it is for display only.
func Decimal(value uint64) string {
	return printer.Sprint(value)
}
