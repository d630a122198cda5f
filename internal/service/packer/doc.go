// Package packer turns a directory of build output into a portable archive.
//
// Run validates every input first, then walks the source folder, compresses
// and checksums each file, writes data.bin and app_metadata.toml into the
// output folder and finally triggers the native build of the launcher.
// Any failure aborts the run; a partially written archive never replaces an
// existing one.
package packer
