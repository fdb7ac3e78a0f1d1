// Package logger is the diagnostics log for cronsh.
//
// Diagnostics never go to stdout, that stream belongs to the report cron
// mails. Every entry carries one of three levels: debug for the play by play,
// notice for things that were unexpected but didn't stop the run, and critical
// for anything that kept the command from running.
package logger
