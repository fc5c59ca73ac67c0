// Package classify categorizes disc content from title and serial evidence.
//
// A Classifier holds ordered pattern tables mapping title vocabulary to a
// content category, plus a serial-prefix override for Lightspan educational
// discs. The tables are data, not control flow, so callers can extend the
// vocabulary without touching classification logic.
package classify
