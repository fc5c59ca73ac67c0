// Package disc models a single dumped disc and parses its filename into
// structured metadata.
//
// A Descriptor is one physical file (cue sheet, CHD container, or raw BIN
// track) resolved to title, region, serial, disc/track numbering, and a
// content category. The parser strips recognized tokens from the name;
// whatever text remains, whitespace-collapsed, is the title. Parsing never
// fails: missing information is recorded as a warning on the descriptor.
package disc
