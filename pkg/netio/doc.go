// Package netio reads the per-network artifacts produced by an automorphism
// search: generator files and statistics logs.
//
// # Overview
//
// A network is identified by a stem, for example "karate". Its artifacts live
// side by side in one directory:
//
//	karate.gen    automorphism generators, one permutation per line
//	karate.log    search statistics, one "key = value" pair per line
//
// [Discover] finds every stem in a directory, [ImportGenerators] and
// [ImportStats] read the two artifacts. The Read* variants accept any
// io.Reader.
//
// # Generator Formats
//
// The format is chosen by file extension:
//
//   - .gen, .txt: GAP cycle notation, 1-indexed, comma-separated:
//     "(1,2)(3,4,5)". A line "()" is the identity; a one-point cycle such as
//     "(3)" is a PARSE_ERROR in every format.
//   - .gaut: saucy output, 0-indexed, space-separated: "(0 1)(2 3 4)".
//   - .gap: a GAP script as written by the saucy-to-GAP converter:
//
//     N:=18;;
//     z:=[(5,6),(5,8),(13,15)];;
//     g:=Group(z);
//
// Blank lines are ignored and an empty file yields an empty generator set,
// which generates the trivial group.
//
// # Statistics Log
//
// Lines without "=" are ignored. Keys and values are trimmed. The keys
// "vertices" and "edges" are required; "total support" and "average support"
// are optional. Every other key is kept verbatim in [Stats.Extra].
//
// # Errors
//
// A missing artifact is FILE_NOT_FOUND. Malformed content is PARSE_ERROR and
// carries the offending line number.
package netio
