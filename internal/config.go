package internal

import (
	"fmt"
	"time"
)

type Config struct {
	BufferSize     int           `env:"BUFFER_SIZE,default=256"`
	SinkTimeout    time.Duration `env:"SINK_TIMEOUT,default=5s"`
	HealthInterval time.Duration `env:"HEALTH_INTERVAL,default=30s"`
	LimitMessages  *int          `env:"LIMIT_MESSAGES"`

	CharReplacement  string `env:"CHARACTER_REPLACEMENT,default=*"`
	EnableModeration bool   `env:"ENABLE_MODERATION,default=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	UploadBaseURL  string `env:"UPLOAD_BASE_URL,default=file://uploads"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
}

// CharacterRune validates that the configured replacement is one rune.
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
