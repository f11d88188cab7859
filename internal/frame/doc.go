// Package frame implements the Content-Length framing used by the LSP base
// protocol.
//
// Messages on the wire look like:
//
//	Content-Length: 18\r\n
//	\r\n
//	{ "some": "data" }
//
// The Decoder is incremental: it accepts whatever bytes have arrived so far,
// consumes exactly the bytes it has matched, and remembers its position in
// the grammar so the next call resumes where the last one stopped. Input may
// be fragmented at any byte boundary, including inside the header. Any
// number of blank separator lines before the header is tolerated.
//
// A malformed header is terminal: the stream is considered corrupt from that
// point and every subsequent Decode call returns the same error.
//
// The Encoder writes the complementary format and flushes after each
// message.
package frame
