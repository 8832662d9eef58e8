// ABOUTME: Audio decoder package for descrambled previews
// ABOUTME: Provides the Decoder interface and the MP3 implementation
// Package decode turns plain MP3 previews into PCM.
//
// It is the downstream consumer of splice.Decode. A stream that descrambles
// without error but fails here wraps ErrInvalidMP3.
//
// Example:
//
//	plain, err := splice.Decode(scrambled)
//	buf, err := decode.DecodeMP3(plain)
package decode
