// ABOUTME: Splice preview descrambling package
// ABOUTME: Turns scrambled CDN preview payloads back into plain MP3 streams
// Package splice reverses the obfuscation applied to marketplace preview
// audio.
//
// A scrambled buffer is laid out as:
//
//	offset  0  marker       2 bytes, ignored
//	offset  2  size         8 bytes, little-endian payload length
//	offset 10  key         18 bytes, consumed cyclically
//	offset 28  payload     size bytes (trailing padding ignored)
//
// Each payload byte is XORed with key[i%18]. Decode is a pure function: it
// performs no I/O, holds no state and never modifies its input.
//
// Example:
//
//	mp3Data, err := splice.Decode(scrambled)
//	if errors.Is(err, splice.ErrMalformedInput) {
//	    // permanent failure for this asset
//	}
package splice
