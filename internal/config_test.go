package internal

import (
	"chat-garden/auth"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("€")
	req.NoError(err)
	req.Equal('€', r)

	_, err = CharacterRune("**")
	req.Error(err)

	_, err = CharacterRune("")
	req.Error(err)
}

func TestSplitWords(t *testing.T) {
	req := require.New(t)

	req.Equal([]string{"spam", "scam"}, SplitWords(" spam, ,scam ,"))
	req.Empty(SplitWords(""))
}

func TestConfig_Address(t *testing.T) {
	require.Equal(t, "localhost:50051", Config{Host: "localhost", Port: 50051}.Address())
}

func TestConfig_HashParams(t *testing.T) {
	req := require.New(t)

	params, err := Config{Argon2MemoryKiB: 19456, Argon2Iterations: 2, Argon2Parallelism: 1}.HashParams()
	req.NoError(err)
	req.Equal(uint32(19456), params.MemoryKiB)
	req.Equal(uint32(2), params.Iterations)
	req.Equal(uint8(1), params.Parallelism)
	req.Equal(auth.DefaultHashParams.SaltLength, params.SaltLength)
	req.Equal(auth.DefaultHashParams.KeyLength, params.KeyLength)

	_, err = Config{Argon2MemoryKiB: 65536, Argon2Iterations: 0, Argon2Parallelism: 2}.HashParams()
	req.Error(err)

	_, err = Config{Argon2MemoryKiB: 65536, Argon2Iterations: 3, Argon2Parallelism: 300}.HashParams()
	req.Error(err)

	// Fewer than 8 KiB per lane
	_, err = Config{Argon2MemoryKiB: 8, Argon2Iterations: 1, Argon2Parallelism: 2}.HashParams()
	req.Error(err)
}
