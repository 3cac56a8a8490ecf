// Package logging wraps zap for the photodna tools.
//
// Entries go to the console (stderr, colored in development) and to a rotating JSON file.
// Perceptual hashes are treated as sensitive: fields that carry them and values that look
// like a full-length hex or base64 hash are replaced with [REDACTED] before encoding,
// unless redaction is switched off.
package logging
