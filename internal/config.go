package internal

import (
	"chat-garden/auth"
	"fmt"
	"strings"
	"time"
)

// Config is the object store server configuration, read from the environment.
type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=50051"`
	DebugPort         int           `env:"DEBUG_PORT,default=8081"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	WatchBufferSize   int           `env:"WATCH_BUFFER_SIZE,default=64"`
	Argon2MemoryKiB   int           `env:"ARGON2_MEMORY_KIB,default=65536"`
	Argon2Iterations  int           `env:"ARGON2_ITERATIONS,default=3"`
	Argon2Parallelism int           `env:"ARGON2_PARALLELISM,default=2"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HashParams returns the Argon2id cost applied to new passwords.
func (c Config) HashParams() (auth.HashParams, error) {
	if c.Argon2MemoryKiB <= 0 || c.Argon2Iterations <= 0 || c.Argon2Parallelism <= 0 || c.Argon2Parallelism > 255 {
		return auth.HashParams{}, fmt.Errorf(
			"invalid argon2 cost m=%d t=%d p=%d",
			c.Argon2MemoryKiB, c.Argon2Iterations, c.Argon2Parallelism,
		)
	}
	params := auth.DefaultHashParams
	params.MemoryKiB = uint32(c.Argon2MemoryKiB)
	params.Iterations = uint32(c.Argon2Iterations)
	params.Parallelism = uint8(c.Argon2Parallelism)
	return params, params.Validate()
}

// SplitWords splits a comma separated word list, skipping blanks.
func SplitWords(list string) []string {
	var words []string
	for _, w := range strings.Split(list, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
