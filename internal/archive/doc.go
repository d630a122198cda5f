// Package archive implements the portable application archive format.
//
// An archive is a single binary file:
//
//	MAGIC                                  "rustdesk"
//	repeated for every packed file:
//	  path length     uint32, big-endian
//	  path            UTF-8, forward slashes, relative to the packed root
//	  data length     uint32, big-endian
//	  data            brotli-compressed file contents
//	  checksum        MD5 of the uncompressed contents, 32 lowercase hex bytes
//	MAGIC                                  "rustdesk"
//	entry point                            UTF-8, remainder of the file
//
// There is no entry count or index. Readers check for the trailing magic at
// every record boundary and nowhere else, so compressed payloads that happen
// to contain the magic bytes are never misread.
package archive
