// Package converter plans and executes lossless format conversions between
// cue/bin images and compressed containers through an external tool. The
// tool is trusted only as far as its exit code plus the presence of the
// expected output artifact; sources are deleted strictly after verification.
package converter
