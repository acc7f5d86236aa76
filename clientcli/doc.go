// Package clientcli implements Unix-style file operations (ls, cat, get,
// put, mv, cp, rm, du and friends) on top of the raw panel endpoints,
// along with the profile configuration and output formatting the command
// line tool is built from.
//
// Operations that take multiple targets issue one panel call per target
// and report per-target results, so a single failing target does not
// abort the batch.
package clientcli
