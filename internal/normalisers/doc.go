// Package normalisers turns regulatory source files (plain text, DOCX,
// PDF) into plain text for corpus preparation.
//
// Format normalisers live in subpackages and are registered with a
// Registry, which picks one by MIME type. Clean applies the whitespace
// and punctuation rules every prepared file goes through.
package normalisers
