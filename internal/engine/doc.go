// Package engine attaches to a shared MATLAB session and executes code in it.
//
// The package never starts or stops MATLAB. A session is shared externally by
// running the shareEngine helper script inside a MATLAB command window; the
// helper registers the session by writing a descriptor file into the session
// registry directory and then services newline-delimited JSON requests on a
// unix control socket. This package discovers descriptors (discovery.go),
// attaches to the socket (session.go), and layers the execution API on top
// (engine.go, exec.go, value.go).
package engine
