// Package services defines the error taxonomy shared by the transcription
// pipeline and the CLI.
package services
