// Package testutil provides mocks and table builders shared by package tests.
package testutil
