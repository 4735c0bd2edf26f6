//go:build mainstaydebug

package mainstay

// debugDefault selects the execution mode when the host does not choose
// one. Debug builds invoke the application body directly, so runtime
// faults reach an attached debugger unrecovered.
const debugDefault = true
