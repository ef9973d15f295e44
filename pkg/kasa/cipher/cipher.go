// Package cipher implements the autokey XOR obfuscation applied to every
// frame exchanged with a device on UDP port 9999.
//
// Each output byte is the running key XOR the input byte. The key starts at
// InitialKey and is then replaced by the ciphertext byte: the output when
// encrypting, the input when decrypting. The transform preserves length and
// adds no framing. It is an obfuscation, not encryption.
package cipher

// InitialKey is the key byte used for the first position of every frame.
const InitialKey byte = 0xAB

// Encrypt encodes a plaintext command into its wire form.
func Encrypt(plaintext []byte) []byte {
	out := make([]byte, len(plaintext))
	k := InitialKey
	for i, b := range plaintext {
		out[i] = k ^ b
		k = out[i]
	}
	return out
}

// Decrypt decodes a received frame back into plaintext.
func Decrypt(ciphertext []byte) []byte {
	out := make([]byte, len(ciphertext))
	k := InitialKey
	for i, b := range ciphertext {
		out[i] = k ^ b
		k = b
	}
	return out
}

// EncryptString is a convenience wrapper for text commands.
func EncryptString(s string) []byte {
	return Encrypt([]byte(s))
}

// DecryptString decodes a frame and returns it as text.
func DecryptString(frame []byte) string {
	return string(Decrypt(frame))
}
