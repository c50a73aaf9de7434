// Package session runs one workflow at a time in the background and reports
// what happens as a stream of events.
//
// A State owns the single-run guard: starting a workflow while another is
// running fails with ErrBusy. Workers never write results into shared
// fields; every result travels as the value of the terminal event. Front
// ends (the CLI today, an interactive UI later) read Events and render them.
package session
