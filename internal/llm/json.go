package llm

import (
	"errors"
	"strings"
)

// ExtractJSON finds the first balanced JSON object or array in a model
// response that may be wrapped in prose or a markdown fence.
func ExtractJSON(response string) (string, error) {
	start := strings.IndexAny(response, "{[")
	if start == -1 {
		return "", errors.New("no JSON found in response")
	}

	opener := response[start]
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return response[start : i+1], nil
			}
		}
	}

	return "", errors.New("malformed JSON in response")
}
