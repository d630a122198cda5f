// Package extractor is the consumer side of the portable archive.
//
// Inspect lists the records of an archive and, on request, decompresses each
// one and checks it against its stored checksum. Extract restores the packed
// tree into a destination folder: files whose checksum already matches are
// skipped, the rest are replaced atomically, and the entry point is made
// executable.
package extractor
