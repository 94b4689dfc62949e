package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrPayloadCorrupt = errors.New("данные товара повреждены или ключ неверен")

// SealPayload шифрует текстовые данные товара перед записью в БД.
// Результат - base64 от nonce||ciphertext.
func SealPayload(key []byte, plaintext string) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("ошибка инициализации шифра: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenPayload расшифровывает данные товара для выдачи покупателю.
func OpenPayload(key []byte, envelope string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", ErrPayloadCorrupt
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("ошибка инициализации шифра: %w", err)
	}

	if len(raw) < aead.NonceSize() {
		return "", ErrPayloadCorrupt
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrPayloadCorrupt
	}

	return string(plaintext), nil
}
