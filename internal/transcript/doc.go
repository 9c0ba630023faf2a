// Package transcript renders aggregated subtitle chunks as SRT or plain text.
package transcript
