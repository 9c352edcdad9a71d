package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("file-1", "innovations/inn-1/evidence.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	fileID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "file-1", fileID)
	require.Equal(t, "innovations/inn-1/evidence.pdf", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond*10)
	token, _, err := signer.Generate("file-1", "innovations/inn-1/evidence.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	fileID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "file-1", fileID)
	require.Equal(t, "innovations/inn-1/evidence.pdf", path)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("file-1", "innovations/inn-1/evidence.pdf")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	require.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token, false)
	require.Error(t, err)
}
