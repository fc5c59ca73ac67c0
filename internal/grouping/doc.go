// Package grouping partitions parsed disc descriptors into title groups.
//
// Grouping distinguishes true multi-disc sets from same-series titles that
// were released as separate SKUs: discs merge into one group only when their
// full normalized titles are exactly equal after disc-suffix removal, so
// "Command & Conquer (GDI)" and "Command & Conquer (NOD)" stay apart while
// the discs of one game join regardless of differing serials. Cheat and
// educational discs are never merged into a multi-disc set; each receives a
// synthetic unique key.
package grouping
