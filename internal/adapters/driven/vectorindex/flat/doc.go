// Package flat provides an exact, brute-force L2 vector index.
//
// Vectors are kept in one contiguous float32 slice. Search scans every
// vector, which is accurate and fast enough for corpora of a few thousand
// chunks. The binary format is:
//
//	magic "WSVI" | version uint32 | dims uint32 | count uint64 | count*dims float32
//
// All integers and floats are little-endian.
package flat
