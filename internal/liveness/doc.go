// Package liveness answers whether a process identified by PID is alive, and
// delivers signals to it.
//
// Both operations use kill(2): signal 0 performs the existence and permission
// checks without delivering anything.
package liveness
