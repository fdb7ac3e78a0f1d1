// Package shell turns a cron line into a runnable Command.
package shell
