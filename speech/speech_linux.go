//go:build linux

package speech

import "errors"

func (s *System) synthCommand(text string) (string, []string, error) {
	for _, bin := range []string{"espeak-ng", "espeak"} {
		if path, err := s.lookPath(bin); err == nil {
			return path, []string{"-s", s.rateArg(), "--", text}, nil
		}
	}
	return "", nil, errors.New("speech not available: install espeak-ng or espeak")
}
