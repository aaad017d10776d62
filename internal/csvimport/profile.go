package csvimport

import (
	"slices"

	"github.com/theirongolddev/banker/internal/config"
)

// FromProfile converts a saved config profile. Empty fields keep their
// defaults.
func FromProfile(p config.CSVProfile) Settings {
	s := DefaultSettings()
	if p.DateColumn > 0 {
		s.DateColumn = p.DateColumn
	}
	if p.DateFormat != "" {
		s.DateFormat = p.DateFormat
	}
	if p.AmountColumn > 0 {
		s.AmountColumn = p.AmountColumn
	}
	if p.DecimalSeparator != "" {
		s.DecimalSeparator = p.DecimalSeparator
	}
	if len(p.DescriptionColumns) > 0 {
		s.DescriptionColumns = slices.Clone(p.DescriptionColumns)
	}
	if p.Delimiter != "" {
		s.Delimiter = p.Delimiter
	}
	if p.Encoding != "" {
		s.Encoding = p.Encoding
	}
	s.SkipFirstLine = p.SkipFirstLine
	return s
}

// Profile converts settings for saving in the config file.
func (s Settings) Profile() config.CSVProfile {
	return config.CSVProfile{
		DateColumn:         s.DateColumn,
		DateFormat:         s.DateFormat,
		AmountColumn:       s.AmountColumn,
		DecimalSeparator:   s.DecimalSeparator,
		DescriptionColumns: slices.Clone(s.DescriptionColumns),
		Delimiter:          s.Delimiter,
		Encoding:           s.Encoding,
		SkipFirstLine:      s.SkipFirstLine,
	}
}
