package cipherbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// El blob cifrado es base64(nonce(12) || tag(16) || ciphertext), en una sola
// cadena para poder viajar como claim string dentro de un token.
const (
	KeySize   = 32
	nonceSize = 12
	tagSize   = 16
	minBlob   = nonceSize + tagSize
)

var (
	ErrDecryption = errors.New("cipherbox: decryption failed")
	ErrKeySize    = errors.New("cipherbox: key must be 32 bytes")
)

// KeyFromSecret deriva la clave AES-256 de un secreto de operador: trunca a
// 32 bytes. Un secreto mas corto no es utilizable y es un error de
// configuracion, no de request.
func KeyFromSecret(secret string) ([]byte, error) {
	if len(secret) < KeySize {
		return nil, ErrKeySize
	}
	return []byte(secret[:KeySize]), nil
}

// Encrypt cifra plaintext con AES-256-GCM y un nonce aleatorio por llamada.
func Encrypt(plaintext string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrKeySize
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// Seal devuelve ciphertext||tag; el formato de salida lleva el tag
	// delante del ciphertext.
	sealed := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, nonceSize+len(sealed))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt revierte Encrypt. Cualquier blob malformado, truncado o con tag
// invalido (texto manipulado o clave equivocada) falla con ErrDecryption.
func Decrypt(blob string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrKeySize
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", ErrDecryption
	}
	if len(raw) < minBlob {
		return "", ErrDecryption
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize:minBlob]
	ciphertext := raw[minBlob:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}
