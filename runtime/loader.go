package runtime

import (
	"bufio"
	"bytes"
	"io/fs"
	"strings"

	"github.com/samber/lo"

	"chat-core/errors"
)

// WordListData carries the result of the loading process including
// metadata for logging.
type WordListData struct {
	Words     []string
	Languages []string
}

// WordListLoader reads censored word dictionaries from a filesystem,
// typically an embed.FS shipped by the binary. Each .txt file is one
// language dictionary, one word per line.
type WordListLoader struct {
	fs fs.FS
}

func NewWordListLoader(f fs.FS) *WordListLoader {
	return &WordListLoader{fs: f}
}

// LoadAll scans the given directory, tracking languages by filename
// ("en.txt" -> "en") and collapsing duplicates across dictionaries.
func (l *WordListLoader) LoadAll(path string) (*WordListData, error) {
	entries, err := fs.ReadDir(l.fs, path)
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(l.fs, path+"/"+entry.Name())
		if err != nil {
			return nil, err
		}

		// A scanner handles both \n and \r\n line endings.
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return &WordListData{Words: lo.Keys(uniqueWords), Languages: languages}, nil
}
