// Package directive finds and edits ":::cover" container directives inside
// Markdown documents.
//
// # Locating
//
// Locate scans a document line by line for container directive fences:
//
//	:::cover
//	path="assets/hero.webp"
//	url="https://example.public.blob.vercel-storage.com/images/<sha256>.webp"
//	alt="Hero image"
//	:::
//
// An opening fence is three or more colons followed by a directive name; it is
// closed by a fence of at least as many colons. Containers may nest. Lines that
// sit inside fenced or indented code blocks are never treated as fences. Only
// containers named "cover" produce spans; spans are byte offsets into the
// original document and never overlap.
//
// # Codec
//
// Decode turns the text of one span into a Block holding the key/value fields,
// their original order, the block's indentation, line-ending style and the exact
// fence lines. Encode renders the block back, so that an unmodified block
// round-trips byte for byte apart from dropped non key/value lines.
package directive
