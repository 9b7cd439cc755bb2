// Package models lists the chat models visible to the configured API key.
package models
