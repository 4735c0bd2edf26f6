//go:build !mainstaydebug

package mainstay

// debugDefault selects the execution mode when the host does not choose
// one. Release builds run the application body under the crash guard.
const debugDefault = false
