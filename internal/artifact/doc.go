// Package artifact extracts named file artifacts from free-form AI output.
//
// A model reply is treated as alternating prose and fenced code segments.
// Each closed fenced segment becomes one file in a fileset.Set; prose plays
// no role here (it is rendered as conversation text elsewhere). The
// extractor is called repeatedly while a reply streams in, so it must never
// assume the text is complete: an unterminated fence stays prose until a
// later chunk closes it, and re-running on a longer buffer only ever
// resolves more segments.
package artifact
