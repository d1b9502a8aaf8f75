// Package logger provides the structured logger used across opensos.
//
// It exposes a small key/value Logger interface backed by zerolog, with
// console and rotated file writers selectable from configuration.
package logger
