// ABOUTME: Audio output package for auditioning previews
// ABOUTME: Provides Output interface and oto implementation
// Package output plays decoded preview PCM.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(buf.Format)
//	err = out.Write(buf.Samples)
package output
