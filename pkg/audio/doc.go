// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format and Buffer types shared by decoders and outputs
// Package audio provides the PCM types passed between the MP3 decoder and
// audio outputs.
//
//   - Format: describes a decoded stream (codec, sample rate, channels, bit depth)
//   - Buffer: interleaved 16-bit PCM with its Format
//
// Example:
//
//	buf, err := decode.DecodeMP3(mp3Data)
//	fmt.Println(buf.Format.SampleRate, buf.Duration())
package audio
