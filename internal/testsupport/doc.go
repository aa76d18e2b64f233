// Package testsupport holds fixtures shared by package tests: temporary
// configurations, opened libraries and attachment trees on disk.
package testsupport
