// Package report renders a mileage report for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/fitglue/bike-miles/pkg/domain/mileage"
)

// TokenHelp points the user at Strava's authentication docs.
const TokenHelp = "To learn more about acquiring an access token, go to:\n" +
	"  https://developers.strava.com/docs/authentication/\n"

// Format selects how a report is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Write renders r to w in the given format.
func Write(w io.Writer, r *mileage.Report, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatText, "":
		return WriteText(w, r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteText writes the heading followed by one line per bike, names padded
// to the longest name:
//
//	Mileage for 2023
//
//	Road Bike     : 11.0
//	Mountain Bike : 20.0
func WriteText(w io.Writer, r *mileage.Report) error {
	p := message.NewPrinter(language.English)

	width := 0
	for _, b := range r.Miles {
		if n := utf8.RuneCountInString(b.Name); n > width {
			width = n
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\nMileage for %d\n\n", r.Year)
	for _, b := range r.Miles {
		sb.WriteString(b.Name)
		sb.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(b.Name)))
		p.Fprintf(&sb, " : %v\n", number.Decimal(b.Miles, number.Scale(1), number.NoSeparator()))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes r as the same document the HTTP API returns.
func WriteJSON(w io.Writer, r *mileage.Report) error {
	out := *r
	if out.Miles == nil {
		out.Miles = []mileage.BikeMiles{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
